// CLAUDE:SUMMARY CLI subcommand that reads a contact file, maps and normalizes it with a preset, and writes CSV, text or XLSX.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hazyhaar/contact-normalizer/pkg/api"
	"github.com/hazyhaar/contact-normalizer/pkg/ingest"
	"github.com/hazyhaar/contact-normalizer/pkg/kit"
)

type normalizeOptions struct {
	In       string // "-" reads stdin
	InFormat string
	Encoding string
	Preset   string
	Rules    string
	Out      string // empty writes stdout
	Format   string
	Raw      bool
}

func cmdNormalize(args []string) {
	fs := flag.NewFlagSet("normalize", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	var opts normalizeOptions
	fs.StringVar(&opts.In, "in", "-", "input file (.csv, .xlsx, .txt) or - for stdin")
	fs.StringVar(&opts.InFormat, "in-format", "", "input format when it cannot be told from the name (csv, xlsx, text)")
	fs.StringVar(&opts.Encoding, "encoding", "", "CSV text encoding (e.g. windows-1252); default UTF-8")
	fs.StringVar(&opts.Preset, "preset", "", "preset id (default: built-in rules)")
	fs.StringVar(&opts.Rules, "rules", "", `JSON rule overrides, e.g. '{"case":"upper"}'`)
	fs.StringVar(&opts.Out, "out", "", "output file (default stdout)")
	fs.StringVar(&opts.Format, "format", "", "output format: csv, text or xlsx (default from -out, else csv)")
	fs.BoolVar(&opts.Raw, "raw", false, "map columns only, skip name and phone normalization")
	fs.Parse(args)

	cfg, logger := setup(*cfgPath)
	reg := loadPresets(cfg, logger)
	eps := api.NewEndpoints(endpointsConfig(cfg, reg, logger, nil))

	ctx := kit.WithTransport(context.Background(), kit.TransportCLI)
	if err := runNormalize(ctx, eps, opts, os.Stdin, os.Stdout); err != nil {
		if ingest.IsInputError(err) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", ingest.UserMessage(err), err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func runNormalize(ctx context.Context, eps *api.Endpoints, opts normalizeOptions, stdin io.Reader, stdout io.Writer) error {
	data, name, err := readInput(opts.In, stdin)
	if err != nil {
		return err
	}
	inFormat := opts.InFormat
	if inFormat == "" && name == "" {
		inFormat = ingest.FormatCSV
	}

	sel := api.RuleSelector{Preset: opts.Preset}
	if opts.Rules != "" {
		sel.Rules = json.RawMessage(opts.Rules)
	}

	resp, err := eps.Import(ctx, &api.ImportRequest{
		RuleSelector: sel,
		Name:         name,
		Format:       inFormat,
		Content:      data,
		Encoding:     opts.Encoding,
	})
	if err != nil {
		return err
	}
	imported := resp.(api.ImportResponse)

	resp, err = eps.Export(ctx, &api.ExportRequest{
		RuleSelector: sel,
		Format:       outputFormat(opts),
		Contacts:     imported.Contacts,
		Normalize:    !opts.Raw,
	})
	if err != nil {
		return err
	}
	file := resp.(api.ExportResponse)

	if opts.Out == "" {
		_, err = stdout.Write(file.Body)
		return err
	}
	if err := os.WriteFile(opts.Out, file.Body, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}
	fmt.Fprintf(os.Stderr, "%d of %d rows written to %s\n", len(imported.Contacts), imported.Rows, opts.Out)
	return nil
}

func readInput(path string, stdin io.Reader) ([]byte, string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("read stdin: %w", err)
		}
		return data, "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read input: %w", err)
	}
	return data, filepath.Base(path), nil
}

func outputFormat(opts normalizeOptions) string {
	if opts.Format != "" {
		return opts.Format
	}
	switch strings.ToLower(filepath.Ext(opts.Out)) {
	case ".xlsx":
		return api.ExportXLSX
	case ".txt":
		return api.ExportText
	default:
		return api.ExportCSV
	}
}
