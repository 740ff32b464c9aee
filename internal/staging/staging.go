// Package staging provides per-request scratch directories.
//
// Each Dir is uniquely named (uuid + os.MkdirTemp suffix) so concurrent requests never share
// files. All reads and writes are scoped to the directory with os.Root. Cleanup never
// returns an error: failures are logged so they cannot mask the result of the request.
package staging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/digital-business-cards/walletpass/internal/metrics"
)

const dirPrefix = "walletpass-"

// Dir is a scratch directory owned by a single request.
type Dir struct {
	path string
	root *os.Root
}

// New creates a uniquely named directory under root (the OS temp dir when root is empty).
func New(root string) (*Dir, error) {
	if root == "" {
		root = os.TempDir()
	}

	path, err := os.MkdirTemp(root, dirPrefix+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory in %s: %w", root, err)
	}

	r, err := os.OpenRoot(path)
	if err != nil {
		_ = os.RemoveAll(path)
		return nil, fmt.Errorf("failed to open staging directory %s: %w", path, err)
	}

	return &Dir{path: path, root: r}, nil
}

// Path returns the absolute path of name inside the directory.
// name must be a plain file name.
func (d *Dir) Path(name string) string {
	return filepath.Join(d.path, filepath.Base(name))
}

// WriteFile writes data to name inside the directory (0600).
func (d *Dir) WriteFile(name string, data []byte) error {
	if err := d.root.WriteFile(name, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// ReadFile reads name from the directory.
func (d *Dir) ReadFile(name string) ([]byte, error) {
	data, err := d.root.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Cleanup removes the directory and everything in it.
// It is safe to call more than once.
func (d *Dir) Cleanup(logger *slog.Logger) {
	if d == nil || d.path == "" {
		return
	}
	if d.root != nil {
		_ = d.root.Close()
		d.root = nil
	}
	if err := os.RemoveAll(d.path); err != nil {
		metrics.StagingCleanupFailures.Inc()
		logger.Warn("failed to remove staging directory",
			slog.String("path", d.path),
			slog.String("error", err.Error()),
		)
		return
	}
	logger.Debug("staging directory removed", slog.String("path", d.path))
	d.path = ""
}
