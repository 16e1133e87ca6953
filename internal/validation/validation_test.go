package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name      string
		filename  string
		wantError error
	}{
		{"valid fuse name", "board.fuse", nil},
		{"valid with spaces", "my board.fuse", nil},
		{"empty", "", ErrInvalidFilename},
		{"dot", ".", ErrInvalidFilename},
		{"dotdot", "..", ErrInvalidFilename},
		{"forward slash", "dir/board.fuse", ErrInvalidFilename},
		{"backslash", `dir\board.fuse`, ErrInvalidFilename},
		{"null byte", "board\x00.fuse", ErrInvalidFilename},
		{"control character", "board\x07.fuse", ErrInvalidFilename},
		{"leading hyphen", "-board.fuse", ErrInvalidFilename},
		{"too long", strings.Repeat("a", MaxFilenameLength) + ".fuse", ErrFilenameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.filename)
			if tt.wantError == nil {
				if err != nil {
					t.Errorf("ValidateFilename(%q) unexpected error = %v", tt.filename, err)
				}
				return
			}
			if !errors.Is(err, tt.wantError) {
				t.Errorf("ValidateFilename(%q) error = %v, want %v", tt.filename, err, tt.wantError)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{"relative", "boards/board.fuse", nil},
		{"absolute", "/data/board.fuse", nil},
		{"empty", "", ErrEmptyPath},
		{"too long", "/" + strings.Repeat("a", MaxPathLength), ErrPathTooLong},
		{"null byte", "/data/\x00.fuse", ErrInvalidCharacter},
		{"control character", "/data/\n.fuse", ErrInvalidCharacter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError == nil && err != nil {
				t.Errorf("ValidatePath(%q) unexpected error = %v", tt.path, err)
			}
			if tt.wantError != nil && !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath(%q) error = %v, want %v", tt.path, err, tt.wantError)
			}
		})
	}
}

func TestHasFuseExtension(t *testing.T) {
	tests := map[string]bool{
		"board.fuse":      true,
		"BOARD.FUSE":      true,
		"dir/board.Fuse":  true,
		"board.fuse.bak":  false,
		"board.txt":       false,
		"board":           false,
		"fuse":            false,
		"board.fuse.xz":   false,
		"archive.v2.fuse": true,
	}
	for name, want := range tests {
		if got := HasFuseExtension(name); got != want {
			t.Errorf("HasFuseExtension(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestValidateFusePath(t *testing.T) {
	if err := ValidateFusePath("/data/board.fuse"); err != nil {
		t.Errorf("unexpected error = %v", err)
	}
	if err := ValidateFusePath("/data/board.txt"); !errors.Is(err, ErrWrongExtension) {
		t.Errorf("error = %v, want ErrWrongExtension", err)
	}
	if err := ValidateFusePath(""); !errors.Is(err, ErrEmptyPath) {
		t.Errorf("error = %v, want ErrEmptyPath", err)
	}
}

func TestValidateUploadName(t *testing.T) {
	if err := ValidateUploadName("board.fuse"); err != nil {
		t.Errorf("unexpected error = %v", err)
	}
	if err := ValidateUploadName("../board.fuse"); !errors.Is(err, ErrInvalidFilename) {
		t.Errorf("error = %v, want ErrInvalidFilename", err)
	}
	if err := ValidateUploadName("board.bin"); !errors.Is(err, ErrWrongExtension) {
		t.Errorf("error = %v, want ErrWrongExtension", err)
	}
}

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		want FileType
	}{
		{"xz", []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00, 0x00, 0x04}, FileTypeXZ},
		{"gzip", []byte{0x1f, 0x8b, 0x08, 0x00}, FileTypeGzip},
		{"fuse text", []byte("HEADER\r\n0001F2A\r\n"), FileTypeText},
		{"binary", []byte{0x00, 0x01, 0x02, 0x03}, FileTypeUnknown},
		{"empty", nil, FileTypeUnknown},
		{"truncated xz magic", []byte{0xfd, 0x37}, FileTypeText},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectContentType(tt.buf); got != tt.want {
				t.Errorf("DetectContentType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLikelyText(t *testing.T) {
	if !IsLikelyText([]byte("plain ascii\n")) {
		t.Error("ascii should be text")
	}
	if !IsLikelyText([]byte("caf\xc3\xa9\n")) {
		t.Error("utf-8 should be text")
	}
	if IsLikelyText([]byte("a\x00b")) {
		t.Error("null byte should not be text")
	}
	mostlyControl := []byte{0x01, 0x02, 0x03, 'a'}
	if IsLikelyText(mostlyControl) {
		t.Error("control-heavy buffer should not be text")
	}
	long := append([]byte(strings.Repeat("a", 600)), 0x00)
	if !IsLikelyText(long) {
		t.Error("only the first 512 bytes should be examined")
	}
}
