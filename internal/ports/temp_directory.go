package ports

import "io"

type TempFile interface {
	io.WriteCloser
	Name() string
}

// TempDirectory hands out fresh files. Name on the returned file is the path
// downstream consumers should read, and the path Remove takes back.
type TempDirectory interface {
	CreateTemp(prefix string) (TempFile, error)
	Remove(path string) error
}
