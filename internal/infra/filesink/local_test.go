package filesink

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	sink := NewLocalSink(filepath.Join(t.TempDir(), "backups"))

	location, err := sink.Write("tendays_backup_1.txt", "payload")
	require.NoError(t, err)
	assert.Equal(t, "tendays_backup_1.txt", filepath.Base(location))

	content, err := sink.Read(location)
	require.NoError(t, err)
	assert.Equal(t, "payload", content)
}

func TestWriteCreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	sink := NewLocalSink(dir)

	location, err := sink.Write("x.txt", "data")
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(location))
}

func TestReadMissingFile(t *testing.T) {
	sink := NewLocalSink(t.TempDir())
	_, err := sink.Read(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}
