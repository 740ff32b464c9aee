package pass

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// upper bound for a single entry when reading an archive
const maxEntrySize = 10 * 1024 * 1024

// WriteArchive writes files as flat, deflate-compressed entries at maximum compression.
//
// Output is only written to w when every entry succeeded, so a failed archive never
// reaches the caller.
func WriteArchive(w io.Writer, files []File, modified time.Time) error {
	var buf bytes.Buffer

	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return NewArchiveError(fmt.Sprintf("duplicate archive entry %s", f.Name))
		}
		seen[f.Name] = true

		header := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return WrapArchiveError(err, fmt.Sprintf("failed to create archive entry %s", f.Name))
		}
		if _, err := entry.Write(f.Data); err != nil {
			return WrapArchiveError(err, fmt.Sprintf("failed to write archive entry %s", f.Name))
		}
	}

	if err := zw.Close(); err != nil {
		return WrapArchiveError(err, "failed to finalize archive")
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return WrapArchiveError(err, "failed to write archive")
	}
	return nil
}

// BuildArchive returns the archive bytes for files.
func BuildArchive(files []File, modified time.Time) ([]byte, error) {
	var out bytes.Buffer
	if err := WriteArchive(&out, files, modified); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// ReadArchive returns the entries of a .pkpass archive keyed by name.
// Entries in subdirectories or duplicated names are rejected.
func ReadArchive(data []byte) (map[string][]byte, []string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, WrapArchiveError(err, "not a zip archive")
	}

	entries := make(map[string][]byte, len(zr.File))
	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || strings.ContainsAny(zf.Name, `/\`) {
			return nil, nil, NewArchiveError(fmt.Sprintf("archive entry %s is not a top-level file", zf.Name))
		}
		if _, dup := entries[zf.Name]; dup {
			return nil, nil, NewArchiveError(fmt.Sprintf("duplicate archive entry %s", zf.Name))
		}

		rc, err := zf.Open()
		if err != nil {
			return nil, nil, WrapArchiveError(err, fmt.Sprintf("failed to open archive entry %s", zf.Name))
		}
		content, err := io.ReadAll(io.LimitReader(rc, maxEntrySize+1))
		rc.Close()
		if err != nil {
			return nil, nil, WrapArchiveError(err, fmt.Sprintf("failed to read archive entry %s", zf.Name))
		}
		if len(content) > maxEntrySize {
			return nil, nil, NewArchiveError(fmt.Sprintf("archive entry %s exceeds %d bytes", zf.Name, maxEntrySize))
		}

		entries[zf.Name] = content
		names = append(names, zf.Name)
	}
	return entries, names, nil
}
