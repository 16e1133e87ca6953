// Package config resolves fusepatch parameters from defaults, YAML
// configuration files, environment variables and command-line flags.
//
// Settings is embedded into each command so every engine parameter is a flag.
// YAML is a kong.ConfigurationLoader, so the same keys can come from a file:
//
//	header_length: 7
//	lsb_insert_start_position: 66
//	skip_last_rows: 2
//	hex_recurrence: 4
//	bin_string_to_insert: "0000"
//
// Flags win over the environment and config files, which win over defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/fusepatch/core/fuse"
)

// DefaultPaths are the configuration files consulted when present, lowest
// priority first.
var DefaultPaths = []string{
	"~/.config/fusepatch/config.yaml",
	".fusepatch.yaml",
}

// Settings are the engine parameters as command-line flags.
type Settings struct {
	HeaderLength  int    `name:"header-length" default:"7" env:"FUSEPATCH_HEADER_LENGTH" help:"Number of opaque header lines."`
	Position      int    `name:"lsb-insert-start-position" short:"p" default:"66" env:"FUSEPATCH_LSB_INSERT_START_POSITION" help:"Insertion offset in bits, counted from the LSB starting at 1."`
	SkipLastRows  int    `name:"skip-last-rows" default:"2" env:"FUSEPATCH_SKIP_LAST_ROWS" help:"Trailing body lines excluded from record selection."`
	HexRecurrence int    `name:"hex-recurrence" default:"4" env:"FUSEPATCH_HEX_RECURRENCE" help:"Record group size in lines; the first line of each group is a record."`
	Pattern       string `name:"bin-string-to-insert" default:"0000" env:"FUSEPATCH_BIN_STRING_TO_INSERT" help:"Bit string to insert."`
	BaseWidth     int    `name:"base-bit-width" default:"92" env:"FUSEPATCH_BASE_BIT_WIDTH" help:"Bit width records are rendered at before insertion."`
	OutputWidth   int    `name:"output-bit-width" default:"96" env:"FUSEPATCH_OUTPUT_BIT_WIDTH" help:"Bit width of the patched record; 0 derives it from the base width and pattern."`
}

// Engine converts the settings to an engine configuration.
func (s Settings) Engine() fuse.Config {
	return fuse.Config{
		HeaderLength:  s.HeaderLength,
		Position:      s.Position,
		SkipLastRows:  s.SkipLastRows,
		HexRecurrence: s.HexRecurrence,
		Pattern:       s.Pattern,
		BaseWidth:     s.BaseWidth,
		OutputWidth:   s.OutputWidth,
	}
}

// YAML is a kong.ConfigurationLoader reading a flat YAML mapping. Keys may be
// written as snake_case or as the flag name. Scalars are passed to kong as
// their literal text, so an unquoted 0000 stays a four bit pattern.
func YAML(r io.Reader) (kong.Resolver, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	values := map[string]*yaml.Node{}
	if len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("YAML config must be a mapping, got line %d", root.Line)
		}
		for i := 0; i+1 < len(root.Content); i += 2 {
			values[normalizeKey(root.Content[i].Value)] = root.Content[i+1]
		}
	}
	return &yamlResolver{values: values}, nil
}

type yamlResolver struct {
	values map[string]*yaml.Node
}

// Validate rejects keys that match no flag of the application.
func (r *yamlResolver) Validate(app *kong.Application) error {
	known := map[string]bool{}
	collectFlags(app.Node, known)

	var unknown []string
	for k := range r.values {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown configuration keys: %s", strings.Join(unknown, ", "))
	}
	return nil
}

// Resolve returns the configured value for flag, or nil when the file does not set it.
func (r *yamlResolver) Resolve(kctx *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	v, ok := r.values[normalizeKey(flag.Name)]
	if !ok || v.ShortTag() == "!!null" {
		return nil, nil
	}
	if v.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("config key %s must be a scalar (line %d)", flag.Name, v.Line)
	}
	return v.Value, nil
}

func collectFlags(node *kong.Node, known map[string]bool) {
	if node == nil {
		return
	}
	for _, f := range node.Flags {
		known[normalizeKey(f.Name)] = true
	}
	for _, child := range node.Children {
		collectFlags(child, known)
	}
}

func normalizeKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "-", "_")
}

// Load reads an engine configuration from a YAML file, starting from
// fuse.DefaultConfig. Unknown keys are rejected.
func Load(path string) (fuse.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return fuse.Config{}, fmt.Errorf("failed to open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode is Load for an already open reader.
func Decode(r io.Reader) (fuse.Config, error) {
	cfg := fuse.DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return fuse.Config{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return cfg, nil
}

// Encode writes cfg as a YAML configuration file.
func Encode(w io.Writer, cfg fuse.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("failed to write YAML config: %w", err)
	}
	return enc.Close()
}
