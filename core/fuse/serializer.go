package fuse

import (
	"fmt"
	"path/filepath"
	"strings"

	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
	"github.com/FocuswithJustin/fusepatch/internal/fileutil"
)

// OutputName derives the patched file name from the input name:
// {stem}_processed_lsb_insert_start_position_{position}{ext}.
func OutputName(name string, position int) string {
	base := filepath.Base(name)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_processed_lsb_insert_start_position_%d%s", stem, position, ext)
}

// OutputPath resolves where the patched copy of doc is written. An empty
// outputDir means next to the input file, or the working directory for blobs.
func OutputPath(doc *Document, position int, outputDir string) (string, error) {
	dir := outputDir
	if dir == "" {
		if doc.Path != "" {
			dir = filepath.Dir(doc.Path)
		} else {
			dir = "."
		}
	}
	out, err := filepath.Abs(filepath.Join(dir, OutputName(doc.Name, position)))
	if err != nil {
		return "", fuseerrors.NewIO("resolve output path", dir, err)
	}
	if doc.Path != "" && filepath.Clean(out) == filepath.Clean(doc.Path) {
		return "", fuseerrors.NewInput(doc.Path, "output would overwrite the input file")
	}
	return out, nil
}

// Write renders doc, writes it atomically to path and returns the written content.
func Write(doc *Document, path string) ([]byte, error) {
	data := doc.Bytes()
	if err := fileutil.WriteFileAtomic(path, data, 0644); err != nil {
		return nil, fuseerrors.NewIO("write", path, err)
	}
	return data, nil
}
