package fs

import (
	"io"
	"os"
)

// Filesystem is the part of the OS the configuration loader touches.
type Filesystem interface {
	Stat(name string) (os.FileInfo, error)
	Open(name string) (io.ReadCloser, error)
	Getwd() (string, error)
}

type OS struct{}

func (OS) Open(name string) (io.ReadCloser, error) { return os.Open(name) }
func (OS) Stat(name string) (os.FileInfo, error)    { return os.Stat(name) }
func (OS) Getwd() (string, error)                   { return os.Getwd() }
