package fs

import (
	"io"
	"os"
	"path"
	"strings"
	"time"
)

type MockFileInfo struct {
	name  string
	size  int64
	isDir bool
}

func (m MockFileInfo) IsDir() bool        { return m.isDir }
func (m MockFileInfo) ModTime() time.Time { return time.Time{} }
func (m MockFileInfo) Mode() os.FileMode  { return 0o644 }
func (m MockFileInfo) Name() string       { return m.name }
func (m MockFileInfo) Size() int64        { return m.size }
func (m MockFileInfo) Sys() interface{}   { return nil }

// MockFS serves Files by absolute name. Dirs lists names that are
// directories.
type MockFS struct {
	Files map[string]string
	Dirs  []string
	Wd    string
	Err   error
}

func (m MockFS) Stat(name string) (os.FileInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, d := range m.Dirs {
		if d == name {
			return MockFileInfo{name: path.Base(name), isDir: true}, nil
		}
	}
	content, ok := m.Files[name]
	if !ok {
		return nil, os.ErrNotExist
	}
	return MockFileInfo{name: path.Base(name), size: int64(len(content))}, nil
}

func (m MockFS) Open(name string) (io.ReadCloser, error) {
	if _, err := m.Stat(name); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(m.Files[name])), nil
}

func (m MockFS) Getwd() (string, error) {
	return m.Wd, m.Err
}
