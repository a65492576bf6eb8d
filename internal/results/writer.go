package results

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ajitpratap0/cryptogpt/internal/paramfile"
)

// Writer appends records to a result log, one compact record per line
type Writer struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
}

// Create truncates or creates the result log at path
func Create(path string) (*Writer, error) {
	return openWriter(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
}

// Open appends to the result log at path, creating it if needed
func Open(path string) (*Writer, error) {
	return openWriter(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
}

func openWriter(path string, flag int) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	f, err := os.OpenFile(path, flag, 0600) // #nosec G304 -- path is provided by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to open result log: %w", err)
	}
	return &Writer{file: f, buf: bufio.NewWriter(f)}, nil
}

// Append writes one record
func (w *Writer) Append(rec Record) error {
	data, err := paramfile.Marshal(map[string]any(rec))
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.buf.Write(data); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// Flush writes buffered records to the file
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Flush()
}

// Close flushes and closes the result log
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush result log: %w", flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close result log: %w", closeErr)
	}
	return nil
}
