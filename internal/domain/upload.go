package domain

import "io"

// File is an upload handed to a form submission. Whoever receives it owns Body.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// Empty reports whether no usable file was provided.
func (f *File) Empty() bool {
	return f == nil || f.Body == nil || f.Size <= 0
}
