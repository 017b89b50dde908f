package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "FileCopied", FileCopied.String())
	assert.Equal(t, "RemountCompleted", RemountCompleted.String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(999).String())
}
