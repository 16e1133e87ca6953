package fuse

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixtureHeader is a seven line header in the layout of a real .fuse file.
var fixtureHeader = []string{
	"FUSE FILE v1",
	"device: XC-7",
	"rows: 10",
	"width: 96",
	"created: 2024-03-01",
	"checksum: none",
	"----",
}

// fixtureBody has records at body lines 0 and 4 under the default config and
// two trailing lines that are not hex at all.
var fixtureBody = []string{
	"1F2A",              // record, group 0
	"inert-a",           //
	"inert-b",           //
	"inert-c",           //
	"20000000000000000", // record, group 1 (1<<65)
	"inert-d",           //
	"inert-e",           //
	"inert-f",           //
	"TRAILER-1",         // skipped
	"TRAILER-2",         // skipped
}

func fixtureContent(eol string) string {
	lines := append(append([]string{}, fixtureHeader...), fixtureBody...)
	return strings.Join(lines, eol) + eol
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create fixture: %v", err)
	}
	return path
}
