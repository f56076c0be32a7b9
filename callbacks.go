package sf2

import "io"

// FileCallbacks is the caller-supplied collection of file primitives from
// spec.md §6.3 (fopen/fread/fseek/ftell/fclose), expressed as the standard
// Go interfaces it maps onto directly: Seek(0, io.SeekCurrent) is ftell,
// Read is fread, Seek is fseek, Close is fclose. *os.File satisfies this
// with no adapter needed.
type FileCallbacks interface {
	io.Reader
	io.Seeker
	io.Closer
}
