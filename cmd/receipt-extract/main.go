// Command receipt-extract prints the fields extracted from an OCR transcript as JSON.
//
//	receipt-extract --input transcript.txt
//	ocr-tool receipt.jpg | receipt-extract
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/hsa-receipts/internal/extraction"
)

func main() {
	fs := ff.NewFlagSet("receipt-extract")
	var (
		input     = fs.StringLong("input", "-", "Transcript file, or - for stdin")
		yearPivot = fs.IntLong("year-pivot", extraction.DefaultYearPivot, "Two-digit years above this map to 19xx")
		keywords  = fs.StringLong("keywords", "", "YAML keyword dictionary replacing the built-in one (optional)")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("HSA_RECEIPTS"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := run(*input, *keywords, *yearPivot, os.Stdin, os.Stdout); err != nil {
		slog.Error("Extraction failed", "error", err)
		os.Exit(1)
	}
}

func run(input, keywords string, yearPivot int, stdin io.Reader, stdout io.Writer) error {
	var dict *extraction.Dictionary
	if keywords != "" {
		var err error
		if dict, err = extraction.LoadDictionaryFile(keywords); err != nil {
			return err
		}
	}

	var (
		text []byte
		err  error
	)
	if input == "-" {
		text, err = io.ReadAll(stdin)
	} else {
		text, err = os.ReadFile(input)
	}
	if err != nil {
		return fmt.Errorf("reading transcript: %w", err)
	}

	r := extraction.NewParserWithDeps(dict, nil, yearPivot).Parse(string(text))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	return nil
}
