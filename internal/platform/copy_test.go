package platform

import (
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "src.bin")
	dstPath := filepath.Join(dir, "dst.bin")

	data := make([]byte, 3*1024*1024+17)
	_, err := rand.Read(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(srcPath, data, 0o644))

	dst, err := os.Create(dstPath)
	require.NoError(t, err)

	result, err := CopyFile(srcPath, dst, int64(len(data)))
	require.NoError(t, err)
	require.NoError(t, dst.Close())

	assert.Equal(t, int64(len(data)), result.BytesWritten)

	got, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "empty")
	dstPath := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(srcPath, nil, 0o644))

	dst, err := os.Create(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	result, err := CopyFile(srcPath, dst, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.BytesWritten)
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst, err := os.Create(filepath.Join(dir, "out"))
	require.NoError(t, err)
	defer dst.Close()

	_, err = CopyFile(filepath.Join(dir, "nope"), dst, 10)
	assert.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyMethod_String(t *testing.T) {
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "copy_file_range", CopyFileRange.String())
	assert.Equal(t, "sendfile", Sendfile.String())
}
