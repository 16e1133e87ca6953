// Command fusepatch is the CLI for the fuse record transcoder.
// It splices a bit pattern into the hex records of fuse files, previews the
// change, and verifies patched copies against their inputs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/dustin/go-humanize"
	"github.com/pmezard/go-difflib/difflib"

	fuseerrors "github.com/FocuswithJustin/fusepatch/core/errors"
	"github.com/FocuswithJustin/fusepatch/core/fuse"
	"github.com/FocuswithJustin/fusepatch/internal/config"
	"github.com/FocuswithJustin/fusepatch/internal/logging"
)

const version = "0.1.0"

// maxPreviewLimit bounds how many records preview shows at once.
const maxPreviewLimit = 20

// configPaths are the YAML files kong consults before flags are applied.
var configPaths = config.DefaultPaths

// Globals are flags shared by every command.
type Globals struct {
	LogLevel  string          `name:"log-level" default:"warn" enum:"debug,info,warn,error" env:"FUSEPATCH_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFormat string          `name:"log-format" default:"text" enum:"text,json" env:"FUSEPATCH_LOG_FORMAT" help:"Log format (text, json)"`
	Config    kong.ConfigFlag `name:"config" help:"Load parameters from a YAML file"`
}

// CLI defines the command-line interface for fusepatch.
type CLI struct {
	Globals

	Transcode  TranscodeCmd  `cmd:"" help:"Splice the pattern into every record and write a patched copy"`
	Preview    PreviewCmd    `cmd:"" help:"Show how the first records would change without writing anything"`
	Lines      LinesCmd      `cmd:"" help:"Show raw lines with header, record group and trailer markers"`
	Verify     VerifyCmd     `cmd:"" help:"Check a patched copy against its input"`
	ShowConfig ShowConfigCmd `cmd:"" name:"show-config" help:"Print the effective parameters as YAML"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// TranscodeCmd writes the patched copy of a fuse file.
type TranscodeCmd struct {
	config.Settings `embed:""`

	File   string `arg:"" help:"Fuse file to transcode"`
	OutDir string `name:"out-dir" short:"o" help:"Directory for the patched copy (default: next to the input)" type:"path"`
	JSON   bool   `help:"Output as JSON"`
}

func (c *TranscodeCmd) Run(ctx context.Context, kctx *kong.Context) error {
	cfg := c.Engine()
	logging.CommandStarted(ctx, "transcode", c.File, engineArgs(cfg)...)

	start := time.Now()
	res, err := fuse.Transcode(fuse.FilePath(c.File), cfg, fuse.Options{OutputDir: c.OutDir})
	if err != nil {
		return err
	}
	logging.TranscodeFinished(ctx, res.OutputPath, res.Records, cfg.Position, time.Since(start),
		"output_blake3", res.OutputDigest)

	out := kctx.Stdout
	if c.JSON {
		return writeJSON(out, res)
	}

	fmt.Fprintf(out, "Done with %d lines processed, lsb start position=%d\n", res.Records, cfg.Position)
	fmt.Fprintf(out, "  Output:  %s (%s)\n", res.OutputPath, humanize.Bytes(uint64(res.OutputSize)))
	fmt.Fprintf(out, "  Lines:   %d header, %d body\n", res.HeaderLines, res.BodyLines)
	fmt.Fprintf(out, "  Input:   blake3 %s\n", res.InputDigest)
	fmt.Fprintf(out, "  Patched: blake3 %s\n", res.OutputDigest)
	return nil
}

// PreviewCmd shows the first transcoded records.
type PreviewCmd struct {
	config.Settings `embed:""`

	File  string `arg:"" help:"Fuse file to preview"`
	Limit int    `short:"n" default:"5" help:"Number of records to show (1-20)"`
	Diff  bool   `help:"Show each record as a unified diff"`
	JSON  bool   `help:"Output as JSON"`
}

// Validate bounds the preview limit.
func (c *PreviewCmd) Validate() error {
	if c.Limit < 1 || c.Limit > maxPreviewLimit {
		return fmt.Errorf("--limit must be between 1 and %d, got %d", maxPreviewLimit, c.Limit)
	}
	return nil
}

func (c *PreviewCmd) Run(ctx context.Context, kctx *kong.Context) error {
	cfg := c.Engine()
	logging.CommandStarted(ctx, "preview", c.File, append(engineArgs(cfg), "limit", c.Limit)...)

	changes, err := fuse.Preview(fuse.FilePath(c.File), cfg, c.Limit)
	if err != nil {
		return err
	}

	logging.DebugContext(ctx, "preview_rendered", "records", len(changes))

	out := kctx.Stdout
	if c.JSON {
		return writeJSON(out, changes)
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "No records selected.")
		return nil
	}

	for i, ch := range changes {
		line := cfg.HeaderLength + ch.BodyLine
		if c.Diff {
			text, err := recordDiff(ch, line)
			if err != nil {
				return err
			}
			fmt.Fprint(out, text)
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "Record %d (line %d)\n", i+1, line)
		fmt.Fprintf(out, "  Original hex:    %s\n", ch.RawHex)
		fmt.Fprintf(out, "  Modified hex:    %s\n", ch.ModifiedHex)
		fmt.Fprintf(out, "  Original binary: %s\n", ch.OriginalBinary)
		fmt.Fprintf(out, "  Modified binary: %s\n", ch.ModifiedBinary)
	}
	return nil
}

// recordDiff renders one record change as a unified diff of its hex and
// binary forms.
func recordDiff(ch fuse.Change, line int) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        []string{"hex    " + ch.RawHex + "\n", "binary " + ch.OriginalBinary + "\n"},
		B:        []string{"hex    " + ch.ModifiedHex + "\n", "binary " + ch.ModifiedBinary + "\n"},
		FromFile: fmt.Sprintf("line %d (original)", line),
		ToFile:   fmt.Sprintf("line %d (modified)", line),
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fuseerrors.Wrapf(err, "failed to render diff for line %d", line)
	}
	return text, nil
}

// LinesCmd prints raw lines with their role in the file.
type LinesCmd struct {
	config.Settings `embed:""`

	File  string `arg:"" help:"Fuse file to inspect"`
	Limit int    `short:"n" default:"20" help:"Number of lines to show (0 for all)"`
	JSON  bool   `help:"Output as JSON"`
}

func (c *LinesCmd) Run(ctx context.Context, kctx *kong.Context) error {
	cfg := c.Engine()
	logging.CommandStarted(ctx, "lines", c.File, "limit", c.Limit)

	views, err := fuse.Lines(fuse.FilePath(c.File), cfg, c.Limit)
	if err != nil {
		return err
	}

	out := kctx.Stdout
	if c.JSON {
		return writeJSON(out, views)
	}
	for _, v := range views {
		group := ""
		if v.Group >= 0 {
			group = fmt.Sprintf("g%d", v.Group)
		}
		marker := " "
		if v.Record {
			marker = "*"
		}
		fmt.Fprintf(out, "%5d  %-7s %5s %s %s\n", v.Line, v.Section, group, marker, v.Text)
	}
	return nil
}

// VerifyCmd checks a patched copy against its input.
type VerifyCmd struct {
	config.Settings `embed:""`

	Input  string `arg:"" help:"Original fuse file"`
	Output string `arg:"" help:"Patched fuse file"`
	JSON   bool   `help:"Output as JSON"`
}

func (c *VerifyCmd) Run(ctx context.Context, kctx *kong.Context) error {
	cfg := c.Engine()
	logging.CommandStarted(ctx, "verify", c.Input, append(engineArgs(cfg), "output", c.Output)...)

	report, err := fuse.Verify(fuse.FilePath(c.Input), fuse.FilePath(c.Output), cfg)
	if err != nil {
		return err
	}

	out := kctx.Stdout
	if c.JSON {
		if err := writeJSON(out, report); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Input:   %s (blake3 %s)\n", c.Input, report.InputDigest)
		fmt.Fprintf(out, "Output:  %s (blake3 %s)\n", c.Output, report.OutputDigest)
		fmt.Fprintf(out, "Records: %d\n", report.Records)
		for _, m := range report.Mismatches {
			fmt.Fprintf(out, "  [FAIL] %s\n", m)
		}
	}

	if !report.OK() {
		logging.WarnContext(ctx, "verify_mismatch", "output", c.Output, "mismatches", len(report.Mismatches))
		return fmt.Errorf("verification failed: %d mismatch(es)", len(report.Mismatches))
	}
	logging.InfoContext(ctx, "verify_passed", "output", c.Output, "records", report.Records)
	if !c.JSON {
		fmt.Fprintln(out, "Verification passed!")
	}
	return nil
}

// ShowConfigCmd prints the parameters after defaults, config files,
// environment and flags have been applied.
type ShowConfigCmd struct {
	config.Settings `embed:""`
}

func (c *ShowConfigCmd) Run(kctx *kong.Context) error {
	return config.Encode(kctx.Stdout, c.Engine())
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(kctx *kong.Context) error {
	fmt.Fprintf(kctx.Stdout, "fusepatch version %s\n", version)
	return nil
}

func engineArgs(cfg fuse.Config) []any {
	return []any{
		"header_length", cfg.HeaderLength,
		"lsb_insert_start_position", cfg.Position,
		"skip_last_rows", cfg.SkipLastRows,
		"hex_recurrence", cfg.HexRecurrence,
		"bin_string_to_insert", cfg.Pattern,
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func newParser(cli *CLI, stdout, stderr io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("fusepatch"),
		kong.Description("Splice a bit pattern into the hex records of fuse files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(config.YAML, configPaths...),
		kong.Writers(stdout, stderr),
	)
}

// run parses args and executes the selected command. Failures are logged
// with their error kind and returned.
func run(args []string, stdout, stderr io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logging.InitLoggerTo(stderr, logging.ParseLevel(cli.LogLevel), logging.ParseFormat(cli.LogFormat))
	ctx := logging.WithRunID(context.Background(), logging.NewRunID())
	kctx.BindTo(ctx, (*context.Context)(nil))

	if err := kctx.Run(); err != nil {
		command := strings.Fields(kctx.Command())[0]
		logging.CommandFailed(ctx, command, fuseerrors.KindOf(err).String(), err)
		return err
	}
	return nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "fusepatch: error: %v\n", err)
		os.Exit(1)
	}
}
