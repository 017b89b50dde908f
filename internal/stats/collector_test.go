package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector()
	c.AddFilesCopied(3)
	c.AddBytesCopied(1024)
	c.AddFilesSkipped(1)
	c.AddDirsCreated(2)
	c.AddRemounts(1)
	c.AddMountAttempts(4)

	snap := c.Snapshot()
	assert.Equal(t, int64(3), snap.FilesCopied)
	assert.Equal(t, int64(1024), snap.BytesCopied)
	assert.Equal(t, int64(1), snap.FilesSkipped)
	assert.Equal(t, int64(2), snap.DirsCreated)
	assert.Equal(t, int64(1), snap.Remounts)
	assert.Equal(t, int64(4), snap.MountAttempts)
	assert.GreaterOrEqual(t, snap.Elapsed.Nanoseconds(), int64(0))
}

func TestSnapshot_String(t *testing.T) {
	c := NewCollector()
	c.AddFilesCopied(2)
	c.AddDirsAbandoned(1)
	s := c.Snapshot().String()
	assert.Contains(t, s, "copied=2")
	assert.Contains(t, s, "abandoned=1")
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(3*1024*1024/2))
	assert.Equal(t, "2.0 GiB", FormatBytes(2*1024*1024*1024))
}
