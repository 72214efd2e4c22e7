// =============================================================================
// Order Consolidation - File Manager Utility
// =============================================================================
//
// This module provides file management utilities, including:
//   - All-or-nothing file replacement (write temp, sync, rename)
//   - Side-by-side backups of files about to be replaced
//   - File stat helpers used for input fingerprints
//
// REPLACEMENT STRATEGY:
//   - The new content is written to a uniquely named temporary file in the
//     target's directory, so the final rename never crosses devices
//   - The temporary file is synced and closed before the rename
//   - On any failure the temporary file is removed and the target is left
//     exactly as it was
//
// =============================================================================

package utils

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ATOMIC REPLACEMENT
// =============================================================================

// rename is swapped out by tests to simulate a locked target.
var rename = os.Rename

// WriteAtomic replaces path with the bytes produced by write. Either the
// whole new content is in place when it returns nil, or path is untouched.
//
// PARAMETERS:
//   - path: The file to create or replace.
//   - write: Produces the new content.
//
// RETURNS:
//   - An error if any step fails. The temporary file is removed.
func WriteAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := TempPath(path)
	tmp, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}
	if err = rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}

// TempPath returns a unique hidden sibling of path used for staging writes.
func TempPath(path string) string {
	dir, base := filepath.Split(path)
	return filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
}

// IsTempPath reports whether name looks like a file produced by TempPath.
func IsTempPath(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".") && strings.HasSuffix(base, ".tmp")
}

// =============================================================================
// BACKUPS
// =============================================================================

// BackupFile copies path to a sibling named <stem>.<tag>-<suffix><ext> and
// returns the backup location.
//
// EXAMPLE:
//   BackupFile("data/store.xlsx", "corrupt", "01J...") -> "data/store.corrupt-01J....xlsx"
func BackupFile(path, tag, suffix string) (string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s.%s-%s%s", stem, tag, suffix, ext)

	if err := copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}
	return backupPath, nil
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer destFile.Close()

	_, err = io.Copy(destFile, sourceFile)
	if err != nil {
		return err
	}

	return destFile.Sync()
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a regular file or directory exists at path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsNotExist reports whether err says a file does not exist.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// GetFileModTime returns the modification time of a file.
func GetFileModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
