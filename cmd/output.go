package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// report is a command result that can be printed as a table
type report interface {
	headers() []string
	rows() [][]string
}

// writeReport prints r in the requested output format
func writeReport(w io.Writer, format string, r report) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return writeTable(w, r)
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

func writeTable(w io.Writer, r report) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	caser := cases.Title(language.English)

	headers := make([]string, len(r.headers()))
	for i, h := range r.headers() {
		headers[i] = caser.String(strings.ReplaceAll(h, "_", " "))
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	for _, row := range r.rows() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%.6g", v)
}
