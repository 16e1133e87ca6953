package fuse

import (
	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
	"github.com/FocuswithJustin/fusepatch/core/splice"
)

// Options controls where Transcode writes its output.
type Options struct {
	// OutputDir overrides the output directory. Empty means next to the
	// input file, or the working directory for blobs.
	OutputDir string
}

// Change is one transcoded record.
type Change struct {
	// BodyLine is the zero-based index of the record within the body.
	BodyLine int `json:"body_line"`
	splice.Result
}

// Result reports a completed transcode.
type Result struct {
	InputName    string `json:"input_name"`
	InputPath    string `json:"input_path,omitempty"`
	OutputPath   string `json:"output_path"`
	Records      int    `json:"records"`
	HeaderLines  int    `json:"header_lines"`
	BodyLines    int    `json:"body_lines"`
	InputDigest  string `json:"input_blake3"`
	OutputDigest string `json:"output_blake3"`
	OutputSize   int64  `json:"output_size"`
}

// Apply replaces every selected record of doc with its spliced form, in place.
// Nothing in doc changes unless every record transcodes.
func Apply(doc *Document, cfg Config) ([]Change, error) {
	t, err := cfg.transcoder()
	if err != nil {
		return nil, err
	}
	changes, err := transcodeRecords(doc, cfg, t, -1)
	if err != nil {
		return nil, err
	}
	for _, c := range changes {
		doc.Body[c.BodyLine].Text = c.ModifiedHex
	}
	return changes, nil
}

// Transcode loads src, splices every selected record and writes the patched
// copy. All errors are detected before the output file is written.
func Transcode(src Source, cfg Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	doc, err := Load(src, cfg.HeaderLength)
	if err != nil {
		return nil, err
	}
	inputDigest := Digest(doc.Bytes())

	changes, err := Apply(doc, cfg)
	if err != nil {
		return nil, err
	}

	out, err := OutputPath(doc, cfg.Position, opts.OutputDir)
	if err != nil {
		return nil, err
	}
	data, err := Write(doc, out)
	if err != nil {
		return nil, err
	}

	return &Result{
		InputName:    doc.Name,
		InputPath:    doc.Path,
		OutputPath:   out,
		Records:      len(changes),
		HeaderLines:  len(doc.Header),
		BodyLines:    len(doc.Body),
		InputDigest:  inputDigest,
		OutputDigest: Digest(data),
		OutputSize:   int64(len(data)),
	}, nil
}

// Preview transcodes up to limit records of src without writing anything.
// A limit below 1 previews every record.
func Preview(src Source, cfg Config, limit int) ([]Change, error) {
	t, err := cfg.transcoder()
	if err != nil {
		return nil, err
	}
	doc, err := Load(src, cfg.HeaderLength)
	if err != nil {
		return nil, err
	}
	return transcodeRecords(doc, cfg, t, limit)
}

func transcodeRecords(doc *Document, cfg Config, t *splice.Transcoder, limit int) ([]Change, error) {
	indices, err := SelectRecords(len(doc.Body), cfg.HexRecurrence, cfg.SkipLastRows)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(indices) {
		indices = indices[:limit]
	}

	changes := make([]Change, 0, len(indices))
	for _, i := range indices {
		res, err := t.Transcode(doc.Body[i].Text)
		if err != nil {
			return nil, fuseerrors.AtLine(err, i)
		}
		changes = append(changes, Change{BodyLine: i, Result: res})
	}
	return changes, nil
}

// Section names where a line sits in the file.
type Section string

const (
	SectionHeader  Section = "header"
	SectionBody    Section = "body"
	SectionTrailer Section = "trailer"
)

// LineView describes one raw line for display.
type LineView struct {
	// Line is the zero-based line number within the file.
	Line    int     `json:"line"`
	Section Section `json:"section"`
	// Group is the zero-based record group, -1 outside any group.
	Group int `json:"group"`
	// Record marks the first line of a group.
	Record bool   `json:"record"`
	Text   string `json:"text"`
}

// Lines returns the first limit lines of src with their header/body role and
// record group boundaries. A limit below 1 returns every line.
func Lines(src Source, cfg Config, limit int) ([]LineView, error) {
	if cfg.HexRecurrence < 1 {
		return nil, fuseerrors.NewConfig("hex_recurrence", cfg.HexRecurrence, "must be at least 1")
	}
	if cfg.SkipLastRows < 0 {
		return nil, fuseerrors.NewConfig("skip_last_rows", cfg.SkipLastRows, "must not be negative")
	}
	doc, err := Load(src, cfg.HeaderLength)
	if err != nil {
		return nil, err
	}

	n := doc.NumLines()
	if limit > 0 && limit < n {
		n = limit
	}
	grouped := len(doc.Body) - cfg.SkipLastRows

	views := make([]LineView, 0, n)
	for i := 0; i < n; i++ {
		if i < len(doc.Header) {
			views = append(views, LineView{Line: i, Section: SectionHeader, Group: -1, Text: doc.Header[i].Text})
			continue
		}
		b := i - len(doc.Header)
		v := LineView{Line: i, Section: SectionTrailer, Group: -1, Text: doc.Body[b].Text}
		if b < grouped {
			v.Section = SectionBody
			v.Group = b / cfg.HexRecurrence
			v.Record = b%cfg.HexRecurrence == 0
		}
		views = append(views, v)
	}
	return views, nil
}
