package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bamsammich/salvage/internal/config"
	"github.com/bamsammich/salvage/internal/engine"
	"github.com/bamsammich/salvage/internal/event"
	"github.com/bamsammich/salvage/internal/fsops"
	"github.com/bamsammich/salvage/internal/mount"
	"github.com/bamsammich/salvage/internal/oserr"
	"github.com/bamsammich/salvage/internal/stats"
	"github.com/bamsammich/salvage/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

//nolint:gocyclo,revive // cyclomatic,cognitive-complexity: main CLI entry point orchestrates all flag parsing and wiring
func run() int {
	var (
		helper      string
		noSudo      bool
		settle      time.Duration
		verifyFlag  bool
		dryRun      bool
		quiet       bool
		verbose     bool
		logFile     string
		noColor     bool
		showVersion bool
	)

	rootCmd := &cobra.Command{
		Use:   "salvage [flags] <device> <mount-point> <source> <dest>",
		Short: "Copy a directory tree off a flaky removable volume, remounting through driver crashes",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.ExactArgs(4)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "salvage %s\n", version)
				return nil
			}

			inv := config.Invocation{
				Device:     args[0],
				MountPoint: args[1],
				SourceRoot: args[2],
				DestRoot:   args[3],
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd, cfg.Defaults, &helper, &noSudo, &settle, &verifyFlag, &quiet)

			// Configure logging.
			logLevel := slog.LevelInfo
			if verbose {
				logLevel = slog.LevelDebug
			} else if quiet {
				logLevel = slog.LevelWarn
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			logger := slog.New(logHandler)
			slog.SetDefault(logger)

			if noColor || !ui.IsTTY(os.Stdout.Fd()) {
				color.NoColor = true
			}
			if dryRun {
				slog.Info("dry run mode")
			}

			// Set up context with signal handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			ctl := mount.New(mount.Options{
				Device:     inv.Device,
				MountPoint: inv.MountPoint,
				Helper:     helper,
				Sudo:       !noSudo,
				Settle:     settle,
				Logger:     logger,
				Stats:      collector,
				Events:     events,
			})
			fsys := fsops.NewRealFS()

			if err := initialMountCheck(ctx, fsys, ctl, inv.SourceRoot); err != nil {
				return err
			}

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding to the presenter.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.String("dest", ev.Dest),
							slog.Int64("size", ev.Size),
						}
						if ev.Error != nil {
							attrs = append(attrs, slog.String("error", ev.Error.Error()))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "salvage.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			presenter := ui.NewPresenter(ui.Config{
				Writer:    os.Stdout,
				ErrWriter: os.Stderr,
				Stats:     collector,
				SrcRoot:   inv.SourceRoot,
				DstRoot:   inv.DestRoot,
				Quiet:     quiet,
				Verbose:   verbose,
			})

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			slog.Debug("starting copy",
				"source", inv.SourceRoot,
				"dest", inv.DestRoot,
				"device", inv.Device,
				"mount_point", inv.MountPoint,
				"verify", verifyFlag,
			)

			result := engine.Run(ctx, engine.Config{
				SourceRoot: inv.SourceRoot,
				DestRoot:   inv.DestRoot,
				Mounter:    ctl,
				FS:         fsys,
				Stats:      collector,
				Events:     events,
				Logger:     logger,
				DryRun:     dryRun,
				Verify:     verifyFlag,
			})
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			if result.Err != nil {
				slog.Error("copy failed", "error", result.Err)
				if result.Stats.FilesCopied > 0 {
					return &exitError{code: 1} // partial failure
				}
				return &exitError{code: 2} // total failure
			}

			fmt.Fprintln(os.Stdout, "done!")
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().
		StringVar(&helper, "helper", mount.DefaultHelper, "user-space mount command for the source volume")
	rootCmd.Flags().BoolVar(&noSudo, "no-sudo", false, "run the mount helper and umount without sudo")
	rootCmd.Flags().
		DurationVar(&settle, "settle", mount.DefaultSettle, "wait this long after every mount or unmount")
	rootCmd.Flags().BoolVar(&verifyFlag, "verify", false, "verify checksums after copy (BLAKE3)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be copied without writing")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(docsCmd)

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// initialMountCheck probes the source root once. A transport-not-connected
// errno means the volume simply is not mounted yet, so mount it; anything
// else that fails the probe is fatal before any copying starts.
func initialMountCheck(ctx context.Context, fsys fsops.FS, ctl *mount.Controller, sourceRoot string) error {
	_, err := fsys.ReadDir(sourceRoot)
	if err == nil {
		slog.Debug("source already mounted", "source", sourceRoot)
		return nil
	}
	if oserr.Classify(err) != oserr.TransportNotConnected {
		return fmt.Errorf("probe %q: %w", sourceRoot, err)
	}
	if err := ctl.Mount(ctx); err != nil {
		return fmt.Errorf("initial mount: %w", err)
	}
	slog.Info("passed initial mount check", "source", sourceRoot)
	return nil
}

// applyConfigDefaults applies config file defaults for flags not explicitly set on the CLI.
func applyConfigDefaults(
	cmd *cobra.Command,
	defaults config.DefaultsConfig,
	helper *string,
	noSudo *bool,
	settle *time.Duration,
	verify *bool,
	quiet *bool,
) {
	if !cmd.Flags().Changed("helper") && defaults.Helper != nil {
		*helper = *defaults.Helper
	}
	if !cmd.Flags().Changed("no-sudo") && defaults.Sudo != nil {
		*noSudo = !*defaults.Sudo
	}
	if !cmd.Flags().Changed("settle") && defaults.SettleSeconds != nil {
		*settle = time.Duration(*defaults.SettleSeconds) * time.Second
	}
	if !cmd.Flags().Changed("verify") && defaults.Verify != nil {
		*verify = *defaults.Verify
	}
	if !cmd.Flags().Changed("quiet") && defaults.Quiet != nil {
		*quiet = *defaults.Quiet
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
