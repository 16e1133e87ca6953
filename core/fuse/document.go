// Package fuse loads .fuse files, selects their record lines, splices a bit
// pattern into each record and writes the patched copy.
//
// A .fuse file is a block of opaque header lines followed by a body. The body
// is tiled into record groups of a fixed number of lines; the first line of
// each group is a hexadecimal record and the rest pass through untouched. The
// last few body lines belong to no group.
//
// Every function takes its parameters explicitly. Nothing in the package logs
// or keeps state between calls.
package fuse

import (
	"strings"
)

// Line is one line of a .fuse file. Text excludes the terminator, EOL holds it
// ("\n", "\r\n", "\r", or "" for a final unterminated line).
type Line struct {
	Text string
	EOL  string
}

// String returns the line as it appears in the file.
func (l Line) String() string {
	return l.Text + l.EOL
}

// Document is a parsed .fuse file.
type Document struct {
	// Name is the base file name, e.g. "board.fuse".
	Name string
	// Path is the absolute path the document was read from. Empty for blobs.
	Path string
	// Header holds the leading opaque lines.
	Header []Line
	// Body holds every line after the header.
	Body []Line
	// Size is the size in bytes of the decoded content.
	Size int64
}

// SplitLines splits data into lines, keeping each terminator. \n, \r\n and a
// lone \r all end a line. A trailing terminator does not produce an empty line.
func SplitLines(data []byte) []Line {
	var lines []Line
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, Line{Text: string(data[start:i]), EOL: "\n"})
			start = i + 1
		case '\r':
			if i+1 < len(data) && data[i+1] == '\n' {
				lines = append(lines, Line{Text: string(data[start:i]), EOL: "\r\n"})
				i++
			} else {
				lines = append(lines, Line{Text: string(data[start:i]), EOL: "\r"})
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, Line{Text: string(data[start:])})
	}
	return lines
}

// NumLines returns the total number of lines.
func (d *Document) NumLines() int {
	return len(d.Header) + len(d.Body)
}

// Bytes renders the header and body back into file content.
func (d *Document) Bytes() []byte {
	var b strings.Builder
	b.Grow(int(d.Size) + len(d.Body)*4)
	for _, l := range d.Header {
		b.WriteString(l.Text)
		b.WriteString(l.EOL)
	}
	for _, l := range d.Body {
		b.WriteString(l.Text)
		b.WriteString(l.EOL)
	}
	return []byte(b.String())
}
