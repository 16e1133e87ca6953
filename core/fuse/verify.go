package fuse

import (
	"fmt"
)

// Mismatch is one output line that does not match what the transcode of the
// input would produce.
type Mismatch struct {
	Section Section `json:"section"`
	// Line is the zero-based line number within the file.
	Line int    `json:"line"`
	Want string `json:"want"`
	Got  string `json:"got"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s line %d: want %q, got %q", m.Section, m.Line, m.Want, m.Got)
}

// VerifyReport is the outcome of Verify.
type VerifyReport struct {
	Records      int        `json:"records"`
	InputDigest  string     `json:"input_blake3"`
	OutputDigest string     `json:"output_blake3"`
	Mismatches   []Mismatch `json:"mismatches,omitempty"`
}

// OK reports whether the output matched the input in every line.
func (r *VerifyReport) OK() bool {
	return len(r.Mismatches) == 0
}

// Verify checks that output is exactly what transcoding input with cfg
// produces: header and inert lines byte-identical, each record equal to its
// spliced form, and the same line count. Differences are reported in the
// VerifyReport; the error is reserved for inputs that cannot be loaded or
// transcoded.
func Verify(input, output Source, cfg Config) (*VerifyReport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	in, err := Load(input, cfg.HeaderLength)
	if err != nil {
		return nil, err
	}
	out, err := Load(output, cfg.HeaderLength)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		InputDigest:  Digest(in.Bytes()),
		OutputDigest: Digest(out.Bytes()),
	}

	changes, err := Apply(in, cfg)
	if err != nil {
		return nil, err
	}
	report.Records = len(changes)

	for i, want := range in.Header {
		if got := out.Header[i]; got != want {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Section: SectionHeader, Line: i, Want: want.String(), Got: got.String(),
			})
		}
	}

	offset := len(in.Header)
	n := max(len(in.Body), len(out.Body))
	for i := 0; i < n; i++ {
		var want, got string
		if i < len(in.Body) {
			want = in.Body[i].String()
		}
		if i < len(out.Body) {
			got = out.Body[i].String()
		}
		if want != got {
			section := SectionBody
			if i >= len(in.Body)-cfg.SkipLastRows {
				section = SectionTrailer
			}
			report.Mismatches = append(report.Mismatches, Mismatch{
				Section: section, Line: offset + i, Want: want, Got: got,
			})
		}
	}
	return report, nil
}
