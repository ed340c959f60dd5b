package utils

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"samplefetch/internal/models"
	"strings"
)

type ExtractError struct {
	Destination string
	Err         error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("failed to extract archive to %s: %v", e.Destination, e.Err)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// fileReaderAt is satisfied by *os.File, which zip can read in place.
type fileReaderAt interface {
	io.ReaderAt
	Stat() (os.FileInfo, error)
}

// ExtractArchive writes every entry of the zip archive read from r into
// destination, creating it if needed. Existing files are overwritten.
func ExtractArchive(r io.Reader, destination string) (*models.ExtractResult, error) {
	if f, ok := r.(fileReaderAt); ok {
		info, err := f.Stat()
		if err == nil && info.Mode().IsRegular() {
			return extractZip(f, info.Size(), destination)
		}
	}

	tempFile, err := os.CreateTemp("", "samplefetch-*.zip")
	if err != nil {
		return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("failed to create temporary file: %w", err)}
	}
	defer CleanupTempFile(tempFile.Name())
	defer tempFile.Close()

	size, err := io.Copy(tempFile, r)
	if err != nil {
		return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("failed to read archive: %w", err)}
	}

	return extractZip(tempFile, size, destination)
}

func extractZip(ra io.ReaderAt, size int64, destination string) (*models.ExtractResult, error) {
	reader, err := zip.NewReader(ra, size)
	if err != nil && !errors.Is(err, zip.ErrInsecurePath) {
		return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("invalid zip archive: %w", err)}
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("failed to create destination: %w", err)}
	}

	root, err := filepath.Abs(destination)
	if err != nil {
		return nil, &ExtractError{Destination: destination, Err: err}
	}

	result := &models.ExtractResult{Destination: destination}

	for _, file := range reader.File {
		target, err := entryPath(root, file.Name)
		if err != nil {
			return nil, &ExtractError{Destination: destination, Err: err}
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("failed to create %s: %w", file.Name, err)}
			}
			result.DirCount++
			continue
		}

		if target == root {
			return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("invalid entry name %q", file.Name)}
		}

		written, err := extractFile(file, target)
		if err != nil {
			return nil, &ExtractError{Destination: destination, Err: fmt.Errorf("failed to extract %s: %w", file.Name, err)}
		}

		result.FileCount++
		result.TotalSizeBytes += written
	}

	result.TotalSizeHuman = FormatBytes(result.TotalSizeBytes)

	return result, nil
}

// entryPath rejects entries that would land outside root.
func entryPath(root, name string) (string, error) {
	cleaned := filepath.FromSlash(strings.ReplaceAll(name, `\`, "/"))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" || strings.HasPrefix(cleaned, string(filepath.Separator)) {
		return "", fmt.Errorf("illegal absolute path in archive: %s", name)
	}

	target := filepath.Join(root, cleaned)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal path in archive: %s", name)
	}

	return target, nil
}

func extractFile(file *zip.File, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, err
	}

	rc, err := file.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0644
	}

	// Replace rather than truncate: an earlier read-only copy (or a symlink)
	// must not block or redirect the overwrite.
	if info, err := os.Lstat(target); err == nil && !info.IsDir() {
		if err := os.Remove(target); err != nil {
			return 0, err
		}
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, rc)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	return written, err
}

func CleanupTempFile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to cleanup temporary file %s: %w", path, err)
	}
	return nil
}
