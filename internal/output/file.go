package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile writes items to path in the given format. The data lands in a
// temporary file first and is renamed into place, so readers never observe a
// partially written corpus.
func WriteFile(path string, format Format, items []any, opts ...WriterOption) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpPath := tmp.Name()
	committed := false

	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	writer, err := NewWriter(tmp, format, opts...)
	if err != nil {
		return err
	}

	if err := writer.WriteAll(items); err != nil {
		return fmt.Errorf("failed to write items: %w", err)
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	committed = true

	return nil
}
