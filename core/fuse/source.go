package fuse

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"

	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
	"github.com/FocuswithJustin/fusepatch/internal/validation"
)

// Source is an input to the engine: either a FilePath or a Blob.
type Source interface {
	// Name returns the file name used to derive the output name.
	Name() string
	read() (data []byte, path string, err error)
}

// FilePath is a .fuse file on disk.
type FilePath string

// Name returns the base name of the path.
func (p FilePath) Name() string {
	return filepath.Base(string(p))
}

func (p FilePath) read() ([]byte, string, error) {
	path := string(p)
	if err := validation.ValidateFusePath(path); err != nil {
		return nil, "", &fuseerrors.InputError{Path: path, Message: "must be an existing .fuse file", Err: err}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", &fuseerrors.InputError{Path: path, Message: "cannot resolve path", Err: err}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, "", &fuseerrors.InputError{Path: path, Message: "file not found", Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, "", fuseerrors.NewInput(path, "not a regular file")
	}
	if info.Size() > validation.MaxFileSize {
		return nil, "", &fuseerrors.InputError{Path: path, Message: "file exceeds size limit", Err: validation.ErrFileTooLarge}
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, "", fuseerrors.NewIO("read", path, err)
	}
	return data, abs, nil
}

// Blob is an in-memory upload together with the file name it was declared with.
// It is never written to disk under its own name.
type Blob struct {
	Filename string
	Data     []byte
}

// Name returns the declared file name.
func (b Blob) Name() string {
	return b.Filename
}

func (b Blob) read() ([]byte, string, error) {
	if err := validation.ValidateUploadName(b.Filename); err != nil {
		return nil, "", &fuseerrors.InputError{Path: b.Filename, Message: "bad upload name", Err: err}
	}
	if len(b.Data) > validation.MaxFileSize {
		return nil, "", &fuseerrors.InputError{Path: b.Filename, Message: "upload exceeds size limit", Err: validation.ErrFileTooLarge}
	}
	return b.Data, "", nil
}

// Load reads src and splits it into a header of headerLength lines and a body.
// XZ or gzip compressed content is decompressed first.
func Load(src Source, headerLength int) (*Document, error) {
	if src == nil {
		return nil, fuseerrors.NewInput("", "no input given")
	}
	if headerLength < 0 {
		return nil, fuseerrors.NewConfig("header_length", headerLength, "must not be negative")
	}

	raw, path, err := src.read()
	if err != nil {
		return nil, err
	}

	data, err := decompress(raw)
	if err != nil {
		return nil, &fuseerrors.InputError{Path: src.Name(), Message: "cannot decompress", Err: err}
	}

	lines := SplitLines(data)
	if len(lines) < headerLength {
		return nil, fuseerrors.NewInput(src.Name(),
			fmt.Sprintf("file has %d lines, header needs %d", len(lines), headerLength))
	}

	return &Document{
		Name:   src.Name(),
		Path:   path,
		Header: lines[:headerLength],
		Body:   lines[headerLength:],
		Size:   int64(len(data)),
	}, nil
}

// decompress unwraps XZ and gzip content, capped at validation.MaxFileSize.
// Anything else is returned unchanged.
func decompress(data []byte) ([]byte, error) {
	var r io.Reader
	switch validation.DetectContentType(data) {
	case validation.FileTypeXZ:
		xr, err := xz.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fuseerrors.Wrap(err, "xz")
		}
		r = xr
	case validation.FileTypeGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fuseerrors.Wrap(err, "gzip")
		}
		defer gr.Close()
		r = gr
	default:
		return data, nil
	}

	out, err := io.ReadAll(io.LimitReader(r, validation.MaxFileSize+1))
	if err != nil {
		return nil, err
	}
	if len(out) > validation.MaxFileSize {
		return nil, validation.ErrFileTooLarge
	}
	return out, nil
}
