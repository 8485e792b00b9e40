package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivan-cunha/kobuta/internal/columnar"
	"github.com/ivan-cunha/kobuta/internal/compression"
	"github.com/ivan-cunha/kobuta/internal/schema"
	"github.com/ivan-cunha/kobuta/internal/storage"
	"github.com/ivan-cunha/kobuta/pkg/types"
)

const (
	KobutaExtension   = ".kbt"
	defaultBufferSize = 5 * 1024 * 1024
)

type options struct {
	command    string
	input      string
	output     string
	schema     string
	compress   string
	separator  string
	bufferSize int
	sampleSize int
	raw        bool
	header     bool
	verbose    bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("kobuta failed", "err", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("kobuta", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.command, "cmd", "convert", "Command to execute (convert, info, infer, arrow)")
	fs.StringVar(&opts.input, "in", "", "Input file path")
	fs.StringVar(&opts.output, "out", "", "Output file path")
	fs.StringVar(&opts.schema, "schema", "", `Schema, e.g. "Float32 Nullable, Int32"`)
	fs.StringVar(&opts.compress, "compress", "zstd", "Payload codec ("+strings.Join(compression.Names(), ", ")+")")
	fs.StringVar(&opts.separator, "sep", ",", "Field separator (single byte)")
	fs.IntVar(&opts.bufferSize, "buffer", defaultBufferSize, "Output buffer size in bytes")
	fs.IntVar(&opts.sampleSize, "sample", storage.DefaultSampleSize, "Rows sampled by infer")
	fs.BoolVar(&opts.raw, "raw", false, "Write the bare payload without a container")
	fs.BoolVar(&opts.header, "header", false, "Skip the first row of the CSV input")
	fs.BoolVar(&opts.verbose, "v", false, "Verbose logging")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	if len(opts.separator) != 1 {
		return fmt.Errorf("separator must be a single byte, got %q", opts.separator)
	}

	switch opts.command {
	case "convert":
		return convertCSV(opts, stdout)
	case "info":
		return showKobutaInfo(opts.input, stdout)
	case "infer":
		return inferSchema(opts, stdout)
	case "arrow":
		return exportArrow(opts, stdout)
	default:
		return fmt.Errorf("unknown command: %s", opts.command)
	}
}

// ensureKobutaExtension ensures the file has the .kbt extension
func ensureKobutaExtension(filename string) string {
	if !strings.HasSuffix(strings.ToLower(filename), KobutaExtension) {
		return filename + KobutaExtension
	}
	return filename
}

func validateKobutaFile(filename string) error {
	if !strings.HasSuffix(strings.ToLower(filename), KobutaExtension) {
		return fmt.Errorf("invalid file extension: file must have %s extension", KobutaExtension)
	}
	return nil
}

func convertCSV(opts options, stdout io.Writer) error {
	if opts.input == "" || opts.output == "" || opts.schema == "" {
		return errors.New("input, output and schema are required")
	}
	if opts.bufferSize <= 0 {
		return fmt.Errorf("invalid buffer size %d", opts.bufferSize)
	}

	// Parse schema
	fileSchema, err := schema.Parse(opts.schema)
	if err != nil {
		return fmt.Errorf("error parsing schema: %w", err)
	}

	// Read CSV file
	csv, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("error reading CSV file: %w", err)
	}

	// Encode rows
	out := make([]byte, opts.bufferSize)
	enc := storage.Encoder{Separator: opts.separator[0], SkipHeader: opts.header}
	res, err := enc.Encode(csv, fileSchema, out)
	if err != nil {
		return fmt.Errorf("error encoding CSV: %w", err)
	}
	payload := out[:res.Written]

	// Write output
	output := opts.output
	if opts.raw {
		if err := os.WriteFile(output, payload, 0o644); err != nil {
			return fmt.Errorf("error writing output file: %w", err)
		}
	} else {
		output = ensureKobutaExtension(output)
		if err := writeContainer(output, fileSchema, opts.compress, payload, res); err != nil {
			return err
		}
	}

	slog.Info("converted", "input", opts.input, "output", output, "rows", res.Rows, "bytes", res.Written)
	fmt.Fprintf(stdout, "Successfully converted %s to %s\n", opts.input, output)
	return nil
}

func writeContainer(path string, fileSchema types.Schema, codec string, payload []byte, res storage.Result) (err error) {
	compressor, err := compression.GetCompressor(codec)
	if err != nil {
		return fmt.Errorf("codec %q: %w", codec, err)
	}

	outFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing output file: %w", cerr)
		}
	}()

	if err := storage.NewWriter(outFile, fileSchema, compressor).Write(payload, res); err != nil {
		return fmt.Errorf("error writing container: %w", err)
	}
	return nil
}

func showKobutaInfo(input string, stdout io.Writer) error {
	if err := validateKobutaFile(input); err != nil {
		return err
	}

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	reader, err := storage.NewReader(file)
	if err != nil {
		return fmt.Errorf("error creating reader: %w", err)
	}
	info := reader.GetFileInfo()

	fmt.Fprintf(stdout, "File: %s\n", filepath.Base(input))
	fmt.Fprintf(stdout, "Version: %d\n", info.Version)
	fmt.Fprintf(stdout, "Created: %s\n", time.Unix(info.Created, 0).UTC().Format(time.RFC3339))
	fmt.Fprintf(stdout, "Codec: %s\n", info.Codec)
	fmt.Fprintf(stdout, "Schema: %s\n", info.Schema)
	fmt.Fprintf(stdout, "Rows: %d\n", info.RowCount)
	fmt.Fprintf(stdout, "Payload: %d bytes (%d stored)\n", info.PayloadLen, info.StoredLen)

	fmt.Fprintln(stdout, "\nColumns:")
	for i, col := range info.Columns {
		fmt.Fprintf(stdout, "- %d: %s (%d bytes, nullable: %v, nulls: %d)\n",
			i+1, col.Type, col.Type.Size(), col.Nullable, col.NullCount)
	}
	return nil
}

func inferSchema(opts options, stdout io.Writer) error {
	if opts.input == "" {
		return errors.New("input file is required")
	}
	csv, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("error reading CSV file: %w", err)
	}
	inferred, err := storage.InferSchema(csv, opts.separator[0], opts.header, opts.sampleSize)
	if err != nil {
		return fmt.Errorf("error inferring schema: %w", err)
	}
	fmt.Fprintln(stdout, inferred.String())
	return nil
}

func exportArrow(opts options, stdout io.Writer) (err error) {
	if opts.input == "" || opts.output == "" || opts.schema == "" {
		return errors.New("input, output and schema are required")
	}
	// Parse schema
	fileSchema, err := schema.Parse(opts.schema)
	if err != nil {
		return fmt.Errorf("error parsing schema: %w", err)
	}

	// Read CSV file
	csv, err := os.ReadFile(opts.input)
	if err != nil {
		return fmt.Errorf("error reading CSV file: %w", err)
	}

	// Create output file
	outFile, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("error closing output file: %w", cerr)
		}
	}()

	// Export rows
	exporter := columnar.Exporter{
		Separator:  opts.separator[0],
		SkipHeader: opts.header,
		Compress:   opts.compress == "zstd",
	}
	rows, err := exporter.Export(outFile, csv, fileSchema)
	if err != nil {
		return fmt.Errorf("error exporting arrow stream: %w", err)
	}

	slog.Info("exported", "input", opts.input, "output", opts.output, "rows", rows)
	fmt.Fprintf(stdout, "Successfully exported %d rows from %s to %s\n", rows, opts.input, opts.output)
	return nil
}
