// internal/infra/filesink/local.go
package filesink

import (
	"fmt"
	"os"
	"path/filepath"
)

// LocalSink implements the backup.Sink interface on the local filesystem.
// Location handles are plain file paths under the configured directory.
type LocalSink struct {
	dir string
}

func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{dir: dir}
}

func (s *LocalSink) Write(name string, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}

func (s *LocalSink) Read(location string) (string, error) {
	data, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("failed to read backup file: %w", err)
	}
	return string(data), nil
}
