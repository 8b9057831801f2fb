package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/feedsync/pkg/constants"
	"github.com/agentstation/feedsync/pkg/errors"
)

// File stores each blob as a file in a directory. Writes go to a temporary
// file that is renamed into place, so a crash never leaves a torn blob.
type File struct {
	dir string
}

// NewFile returns a file backend rooted at dir. The directory is created on
// first write.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

// Dir returns the backend directory.
func (f *File) Dir() string {
	return f.dir
}

// Path returns the file path a blob is stored at.
func (f *File) Path(name string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
	return filepath.Join(f.dir, safe+constants.StateFileExtension)
}

// Read implements Backend.
func (f *File) Read(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := f.Path(name)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("state", name)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// Write implements Backend.
func (f *File) Write(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(f.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", f.dir, err)
	}

	path := f.Path(name)
	tmp, err := os.CreateTemp(f.dir, ".feedsync-tmp-*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		cleanup()
		return errors.WrapIO("chmod", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.WrapIO("close", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

// Delete implements Backend.
func (f *File) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := f.Path(name)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.WrapIO("delete", path, err)
	}
	return nil
}
