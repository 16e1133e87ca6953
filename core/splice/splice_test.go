package splice

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
)

func zeros(n int) string { return strings.Repeat("0", n) }

func TestTranscodeDefaults(t *testing.T) {
	ins := Insertion{Position: 66, Pattern: "0000"}

	tests := []struct {
		name    string
		raw     string
		wantHex string
	}{
		{
			name:    "zero",
			raw:     "0",
			wantHex: zeros(24),
		},
		{
			name:    "value entirely right of the cut",
			raw:     "1F2A",
			wantHex: zeros(20) + "1F2A",
		},
		{
			name:    "highest bit kept on the right",
			raw:     "1" + zeros(16), // 1<<64
			wantHex: zeros(7) + "1" + zeros(16),
		},
		{
			name:    "lowest bit moved left",
			raw:     "2" + zeros(16), // 1<<65
			wantHex: zeros(6) + "2" + zeros(17),
		},
		{
			name:    "lowercase and whitespace",
			raw:     "  1f2a\r",
			wantHex: zeros(20) + "1F2A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transcode(tt.raw, ins, DefaultWidths())
			if err != nil {
				t.Fatalf("Transcode() error = %v", err)
			}
			if got.ModifiedHex != tt.wantHex {
				t.Errorf("ModifiedHex = %q, want %q", got.ModifiedHex, tt.wantHex)
			}
			if len(got.ModifiedHex) != 24 {
				t.Errorf("len(ModifiedHex) = %d, want 24", len(got.ModifiedHex))
			}
			if len(got.OriginalBinary) != 92 {
				t.Errorf("len(OriginalBinary) = %d, want 92", len(got.OriginalBinary))
			}
			if len(got.ModifiedBinary) != 96 {
				t.Errorf("len(ModifiedBinary) = %d, want 96", len(got.ModifiedBinary))
			}
			if got.RawHex != tt.raw {
				t.Errorf("RawHex = %q, want %q", got.RawHex, tt.raw)
			}
		})
	}
}

func TestTranscodeInsertsOnes(t *testing.T) {
	got, err := Transcode("0", Insertion{Position: 66, Pattern: "1111"}, DefaultWidths())
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	// 0xF << 65
	if want := zeros(6) + "1E" + zeros(16); got.ModifiedHex != want {
		t.Errorf("ModifiedHex = %q, want %q", got.ModifiedHex, want)
	}
	if want := zeros(27) + "1111" + zeros(65); got.ModifiedBinary != want {
		t.Errorf("ModifiedBinary = %q, want %q", got.ModifiedBinary, want)
	}
}

func TestTranscodePositionOne(t *testing.T) {
	got, err := Transcode("F", Insertion{Position: 1, Pattern: "0000"}, DefaultWidths())
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	// Nothing of the original stays right of the pattern.
	if want := zeros(88) + "1111" + "0000"; got.ModifiedBinary != want {
		t.Errorf("ModifiedBinary = %q, want %q", got.ModifiedBinary, want)
	}
	if want := zeros(22) + "F0"; got.ModifiedHex != want {
		t.Errorf("ModifiedHex = %q, want %q", got.ModifiedHex, want)
	}
}

func TestTranscodeTopPosition(t *testing.T) {
	// Position base+1 puts the pattern above every original bit.
	got, err := Transcode("F", Insertion{Position: 93, Pattern: "1000"}, DefaultWidths())
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if want := "8" + zeros(22) + "F"; got.ModifiedHex != want {
		t.Errorf("ModifiedHex = %q, want %q", got.ModifiedHex, want)
	}
}

func TestSplicedRegionRoundTrip(t *testing.T) {
	raw := "ABCDEF0123456789ABCDEF" // 88 bits
	patterns := []string{"0000", "1111", "1010", "0110"}

	for _, pattern := range patterns {
		tr, err := New(Insertion{Position: 1, Pattern: pattern}, DefaultWidths())
		if err != nil {
			t.Fatalf("New() error = %v", err)
		}
		for pos := 1; pos <= 92; pos++ {
			tr.ins.Position = pos
			got, err := tr.Transcode(raw)
			if err != nil {
				t.Fatalf("pos %d: Transcode() error = %v", pos, err)
			}

			b := got.ModifiedBinary
			end := len(b) - (pos - 1)
			start := end - len(pattern)
			if region := b[start:end]; region != pattern {
				t.Errorf("pos %d: spliced region = %q, want %q", pos, region, pattern)
			}
			if rest := b[:start] + b[end:]; rest != got.OriginalBinary {
				t.Errorf("pos %d: bits outside splice differ from original", pos)
			}
		}
	}
}

func TestTranscodeErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		ins      Insertion
		widths   Widths
		wantKind fuseerrors.Kind
	}{
		{"non-hex character", "12G4", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"empty record", "", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"whitespace only", "  \t", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"negative sign", "-1", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"plus sign", "+1", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"underscore", "1_0", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"bare prefix", "0x", Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindInvalidInput},
		{"record wider than base", "1" + zeros(23), Insertion{66, "0000"}, DefaultWidths(), fuseerrors.KindValueOutOfRange},
		{"spliced wider than output", strings.Repeat("F", 23), Insertion{66, "11111"}, DefaultWidths(), fuseerrors.KindValueOutOfRange},
		{"position zero", "1", Insertion{0, "0000"}, DefaultWidths(), fuseerrors.KindInvalidConfig},
		{"position past base", "1", Insertion{94, "0000"}, DefaultWidths(), fuseerrors.KindInvalidConfig},
		{"empty pattern", "1", Insertion{66, ""}, DefaultWidths(), fuseerrors.KindInvalidConfig},
		{"non-bit pattern", "1", Insertion{66, "0120"}, DefaultWidths(), fuseerrors.KindInvalidConfig},
		{"zero base width", "1", Insertion{1, "0"}, Widths{Base: 0, Output: 8}, fuseerrors.KindInvalidConfig},
		{"negative output width", "1", Insertion{1, "0"}, Widths{Base: 8, Output: -1}, fuseerrors.KindInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transcode(tt.raw, tt.ins, tt.widths)
			if err == nil {
				t.Fatalf("Transcode() = %+v, want error", got)
			}
			if kind := fuseerrors.KindOf(err); kind != tt.wantKind {
				t.Errorf("KindOf(%v) = %v, want %v", err, kind, tt.wantKind)
			}
			if got != (Result{}) {
				t.Errorf("Transcode() returned partial result %+v", got)
			}
		})
	}
}

func TestDerivedOutputWidth(t *testing.T) {
	w := Widths{Base: DefaultBaseWidth}

	tr, err := New(Insertion{Position: 66, Pattern: "11111"}, w)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tr.OutputWidth() != 97 {
		t.Errorf("OutputWidth() = %d, want 97", tr.OutputWidth())
	}

	got, err := tr.Transcode(strings.Repeat("F", 23))
	if err != nil {
		t.Fatalf("Transcode() error = %v", err)
	}
	if len(got.ModifiedHex) != 25 {
		t.Errorf("len(ModifiedHex) = %d, want 25", len(got.ModifiedHex))
	}
	if len(got.ModifiedBinary) != 97 {
		t.Errorf("len(ModifiedBinary) = %d, want 97", len(got.ModifiedBinary))
	}
}

func TestSplice(t *testing.T) {
	tests := []struct {
		name     string
		bin      string
		position int
		pattern  string
		want     string
	}{
		{"position one appends", "1010", 1, "11", "101011"},
		{"middle", "1010", 3, "00", "100010"},
		{"above all bits", "1010", 5, "11", "111010"},
		{"clamped past the left end", "1010", 9, "0", "01010"},
		{"clamped below one", "1010", 0, "0", "10100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Splice(tt.bin, tt.position, tt.pattern); got != tt.want {
				t.Errorf("Splice(%q, %d, %q) = %q, want %q", tt.bin, tt.position, tt.pattern, got, tt.want)
			}
		})
	}
}

func TestParseRenderIdempotent(t *testing.T) {
	inputs := []string{
		zeros(24),
		"00000000000000000001f2a0",
		"FFFFFFFFFFFFFFFFFFFFFFFF",
		"0123456789abcdefABCDEF00",
	}
	for _, in := range inputs {
		v, err := ParseHex(in)
		if err != nil {
			t.Fatalf("ParseHex(%q) error = %v", in, err)
		}
		got, err := RenderHex(v, len(in)*4)
		if err != nil {
			t.Fatalf("RenderHex() error = %v", err)
		}
		if got != strings.ToUpper(in) {
			t.Errorf("RenderHex(ParseHex(%q)) = %q", in, got)
		}
	}
}

func TestParseHexPrefix(t *testing.T) {
	v, err := ParseHex("0x1F")
	if err != nil {
		t.Fatalf("ParseHex() error = %v", err)
	}
	if v.Cmp(big.NewInt(31)) != 0 {
		t.Errorf("ParseHex(0x1F) = %s, want 31", v)
	}
}

func TestRenderBinary(t *testing.T) {
	got, err := RenderBinary(big.NewInt(5), 8)
	if err != nil {
		t.Fatalf("RenderBinary() error = %v", err)
	}
	if got != "00000101" {
		t.Errorf("RenderBinary(5, 8) = %q", got)
	}

	_, err = RenderBinary(big.NewInt(256), 8)
	var re *fuseerrors.RangeError
	if !errors.As(err, &re) {
		t.Fatalf("RenderBinary(256, 8) error = %v, want RangeError", err)
	}
	if re.Bits != 9 || re.Width != 8 {
		t.Errorf("RangeError = %+v", re)
	}
}

func TestRenderHexOverflow(t *testing.T) {
	if _, err := RenderHex(big.NewInt(16), 4); !errors.Is(err, fuseerrors.ErrValueOutOfRange) {
		t.Errorf("RenderHex(16, 4) error = %v, want ErrValueOutOfRange", err)
	}
}
