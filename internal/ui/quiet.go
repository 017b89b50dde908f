package ui

import (
	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/stats"
)

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan event.Event) error {
	for range events {
		// Counters are kept on the collector directly by the engine;
		// presenters only read from the collector, never write.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
