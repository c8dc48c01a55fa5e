package fs

import (
	"io"
	"os"
)

// File is the access surface a mounted image needs: positioned reads and
// writes, durability, and size inspection.
type File interface {
	io.ReaderAt
	io.WriterAt
	io.Closer
	Stat() (os.FileInfo, error)
	Sync() error
}
