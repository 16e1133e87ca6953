// Package splice implements the record transcoder: a hexadecimal record is
// rendered as a fixed-width bit string, a bit pattern is inserted at a
// position counted from the least-significant bit, and the result is rendered
// back as fixed-width hexadecimal.
package splice

import (
	"fmt"
	"math/big"
	"strings"

	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
)

const (
	// DefaultBaseWidth is the bit width records are rendered at before insertion.
	DefaultBaseWidth = 92
	// DefaultOutputWidth is the bit width of the rendered result (24 hex digits).
	DefaultOutputWidth = 96
)

// Widths holds the bit widths used to render a record before and after insertion.
type Widths struct {
	// Base is the zero-padded width of the original record.
	Base int
	// Output is the width of the rendered result. Zero derives it from
	// Base plus the pattern length.
	Output int
}

// DefaultWidths returns the 92/96 bit widths of the .fuse record layout.
func DefaultWidths() Widths {
	return Widths{Base: DefaultBaseWidth, Output: DefaultOutputWidth}
}

// Insertion describes where and what to splice into a record.
type Insertion struct {
	// Position is the 1-based bit offset from the LSB. The pattern is placed
	// so that Position-1 original bits remain to its right.
	Position int
	// Pattern is a string of '0' and '1' characters.
	Pattern string
}

// Result carries the four renderings of one transcoded record.
type Result struct {
	RawHex         string `json:"raw_hex"`
	ModifiedHex    string `json:"modified_hex"`
	OriginalBinary string `json:"original_binary"`
	ModifiedBinary string `json:"modified_binary"`
}

// Transcoder applies one validated insertion to any number of records.
type Transcoder struct {
	ins      Insertion
	base     int
	output   int
	hexWidth int
}

// New validates the insertion against the widths and returns a Transcoder.
func New(ins Insertion, w Widths) (*Transcoder, error) {
	if w.Base < 1 {
		return nil, fuseerrors.NewConfig("base_bit_width", w.Base, "must be at least 1")
	}
	if w.Output < 0 {
		return nil, fuseerrors.NewConfig("output_bit_width", w.Output, "must not be negative")
	}
	if err := ValidatePattern(ins.Pattern); err != nil {
		return nil, err
	}
	if ins.Position < 1 || ins.Position > w.Base+1 {
		return nil, fuseerrors.NewConfig("lsb_insert_start_position", ins.Position,
			fmt.Sprintf("must be between 1 and %d", w.Base+1))
	}

	output := w.Output
	if output == 0 {
		output = w.Base + len(ins.Pattern)
	}
	return &Transcoder{
		ins:      ins,
		base:     w.Base,
		output:   output,
		hexWidth: (output + 3) / 4,
	}, nil
}

// Transcode is a convenience wrapper around New followed by Transcoder.Transcode.
func Transcode(rawHex string, ins Insertion, w Widths) (Result, error) {
	t, err := New(ins, w)
	if err != nil {
		return Result{}, err
	}
	return t.Transcode(rawHex)
}

// OutputWidth returns the effective output width in bits.
func (t *Transcoder) OutputWidth() int {
	return t.output
}

// Transcode splices the pattern into one record.
func (t *Transcoder) Transcode(rawHex string) (Result, error) {
	v, err := ParseHex(rawHex)
	if err != nil {
		return Result{}, err
	}
	original, err := RenderBinary(v, t.base)
	if err != nil {
		return Result{}, err
	}

	modified := Splice(original, t.ins.Position, t.ins.Pattern)

	mv, ok := new(big.Int).SetString(modified, 2)
	if !ok {
		// Splice only concatenates validated bit strings.
		return Result{}, fuseerrors.NewParse(modified, "spliced value is not a bit string")
	}
	if mv.BitLen() > t.output {
		return Result{}, fuseerrors.NewRange("spliced record", mv.BitLen(), t.output)
	}

	return Result{
		RawHex:         rawHex,
		ModifiedHex:    renderHex(mv, t.hexWidth),
		OriginalBinary: original,
		ModifiedBinary: modified,
	}, nil
}

// Splice inserts pattern into bin so that exactly position-1 trailing bits of
// bin stay to the right of it. The cut is an explicit count from the right end;
// position 1 leaves nothing on the right.
func Splice(bin string, position int, pattern string) string {
	rightLen := position - 1
	if rightLen < 0 {
		rightLen = 0
	}
	if rightLen > len(bin) {
		rightLen = len(bin)
	}
	cut := len(bin) - rightLen

	var b strings.Builder
	b.Grow(len(bin) + len(pattern))
	b.WriteString(bin[:cut])
	b.WriteString(pattern)
	b.WriteString(bin[cut:])
	return b.String()
}

// ParseHex parses an unsigned hexadecimal record. Surrounding whitespace and a
// 0x prefix are accepted; anything else that is not a hex digit is rejected.
func ParseHex(s string) (*big.Int, error) {
	digits := strings.TrimSpace(s)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return nil, fuseerrors.NewParse(s, "empty record")
	}
	for i := 0; i < len(digits); i++ {
		if !isHexDigit(digits[i]) {
			return nil, fuseerrors.NewParse(s, fmt.Sprintf("non-hex character %q", digits[i]))
		}
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, fuseerrors.NewParse(s, "not a hexadecimal integer")
	}
	return v, nil
}

// RenderBinary renders v as a zero-padded bit string of exactly width bits.
func RenderBinary(v *big.Int, width int) (string, error) {
	if v.BitLen() > width {
		return "", fuseerrors.NewRange("record", v.BitLen(), width)
	}
	return pad(v.Text(2), width), nil
}

// RenderHex renders v as zero-padded uppercase hex wide enough for bits.
func RenderHex(v *big.Int, bits int) (string, error) {
	if v.BitLen() > bits {
		return "", fuseerrors.NewRange("record", v.BitLen(), bits)
	}
	return renderHex(v, (bits+3)/4), nil
}

// ValidatePattern checks that pattern is a non-empty bit string.
func ValidatePattern(pattern string) error {
	if pattern == "" {
		return fuseerrors.NewConfig("bin_string_to_insert", pattern, "must not be empty")
	}
	for i := 0; i < len(pattern); i++ {
		if pattern[i] != '0' && pattern[i] != '1' {
			return fuseerrors.NewConfig("bin_string_to_insert", pattern,
				fmt.Sprintf("character %q at offset %d is not a bit", pattern[i], i))
		}
	}
	return nil
}

func renderHex(v *big.Int, digits int) string {
	return pad(strings.ToUpper(v.Text(16)), digits)
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
