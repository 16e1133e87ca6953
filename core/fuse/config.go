package fuse

import (
	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
	"github.com/FocuswithJustin/fusepatch/core/splice"
)

// Config holds every engine parameter. The zero value is not usable; start
// from DefaultConfig.
type Config struct {
	// HeaderLength is the number of opaque leading lines.
	HeaderLength int `json:"header_length" yaml:"header_length"`
	// Position is the 1-based insertion offset counted from the LSB.
	Position int `json:"lsb_insert_start_position" yaml:"lsb_insert_start_position"`
	// SkipLastRows is the number of trailing body lines excluded from record selection.
	SkipLastRows int `json:"skip_last_rows" yaml:"skip_last_rows"`
	// HexRecurrence is the record group size in lines.
	HexRecurrence int `json:"hex_recurrence" yaml:"hex_recurrence"`
	// Pattern is the bit string to insert.
	Pattern string `json:"bin_string_to_insert" yaml:"bin_string_to_insert"`
	// BaseWidth is the bit width records are rendered at before insertion.
	BaseWidth int `json:"base_bit_width" yaml:"base_bit_width"`
	// OutputWidth is the bit width of the rendered result; 0 derives it.
	OutputWidth int `json:"output_bit_width" yaml:"output_bit_width"`
}

// DefaultConfig returns the parameters of the standard .fuse layout.
func DefaultConfig() Config {
	return Config{
		HeaderLength:  7,
		Position:      66,
		SkipLastRows:  2,
		HexRecurrence: 4,
		Pattern:       "0000",
		BaseWidth:     splice.DefaultBaseWidth,
		OutputWidth:   splice.DefaultOutputWidth,
	}
}

// Insertion returns the splice insertion described by c.
func (c Config) Insertion() splice.Insertion {
	return splice.Insertion{Position: c.Position, Pattern: c.Pattern}
}

// Widths returns the splice widths described by c.
func (c Config) Widths() splice.Widths {
	return splice.Widths{Base: c.BaseWidth, Output: c.OutputWidth}
}

// Validate checks every parameter without touching any input.
func (c Config) Validate() error {
	_, err := c.transcoder()
	return err
}

func (c Config) transcoder() (*splice.Transcoder, error) {
	if c.HeaderLength < 0 {
		return nil, fuseerrors.NewConfig("header_length", c.HeaderLength, "must not be negative")
	}
	if c.SkipLastRows < 0 {
		return nil, fuseerrors.NewConfig("skip_last_rows", c.SkipLastRows, "must not be negative")
	}
	if c.HexRecurrence < 1 {
		return nil, fuseerrors.NewConfig("hex_recurrence", c.HexRecurrence, "must be at least 1")
	}
	return splice.New(c.Insertion(), c.Widths())
}
