package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	// File permissions
	filePermissions = 0o664
	dirPermissions  = 0o775
)

// StagingPath returns a unique sibling of path, suitable for a write that is later renamed onto path.
func StagingPath(path string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")
}

// WriteFileAtomic replaces path with data. Readers see either the old content or the new
// one, a crash in between leaves the original untouched.
func WriteFileAtomic(path string, data []byte) error {
	perm := os.FileMode(filePermissions)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	tmp := StagingPath(path)
	//nolint:gosec // Path is derived from the project layout, not user input
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func WriteJSON(path string, value interface{}) error {
	b, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, append(b, '\n'))
}

func ReadJSON(path string, value interface{}) error {
	//nolint:gosec // Path is provided by application configuration, not user input
	cont, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(cont, value)
}

// CopyFile copies src over dst, creating the parent directories of dst.
func CopyFile(src, dst string) error {
	//nolint:gosec // Path is provided by application configuration, not user input
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer in.Close()
	if err := os.MkdirAll(filepath.Dir(dst), dirPermissions); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	tmp := StagingPath(dst)
	//nolint:gosec // Path is derived from the project layout, not user input
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", dst, err)
	}
	return nil
}
