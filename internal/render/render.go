package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
	"gopkg.in/yaml.v3"
)

// Format names an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML, FormatTSV:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, json, yaml or tsv)", s)
	}
}

// Options control how a Renderer writes.
type Options struct {
	Format    Format
	Porcelain bool
}

// Renderer writes command output in the configured format.
type Renderer struct {
	writer io.Writer
	opts   Options
}

func NewRenderer(writer io.Writer, opts Options) *Renderer {
	return &Renderer{
		writer: writer,
		opts:   opts,
	}
}

// Render writes data in the structured formats and the headers/rows view in
// the tabular ones. Porcelain output is compact JSON or tab-separated rows.
func (r *Renderer) Render(data any, headers []string, rows [][]string) error {
	switch r.opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		if !r.opts.Porcelain {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.writer)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatTSV:
		return r.writeRows(append([][]string{headers}, rows...), nil)
	}

	if len(rows) == 0 {
		return nil
	}
	lines := append([][]string{headers}, rows...)
	if r.opts.Porcelain {
		return r.writeRows(lines, nil)
	}
	widths := columnWidths(lines)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	lines = append([][]string{headers, rule}, rows...)
	return r.writeRows(lines, widths)
}

// writeRows writes one line per row. With widths, every cell but the last is
// padded to its column width and cells are separated by two spaces;
// without, cells are tab-separated.
func (r *Renderer) writeRows(lines [][]string, widths []int) error {
	var b strings.Builder
	for _, cells := range lines {
		if widths == nil {
			b.WriteString(strings.Join(cells, "\t"))
			b.WriteByte('\n')
			continue
		}
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-utf8.RuneCountInString(cell)))
			}
		}
		b.WriteByte('\n')
	}
	_, err := io.WriteString(r.writer, b.String())
	return err
}

func columnWidths(lines [][]string) []int {
	widths := make([]int, len(lines[0]))
	for _, cells := range lines {
		for i, cell := range cells {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}

// RenderDiff writes a unified diff of two line sets. Nothing is written when
// they are equal; the return value reports whether they differed.
func (r *Renderer) RenderDiff(fromName string, from []string, toName string, to []string) (bool, error) {
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        withNewlines(from),
		B:        withNewlines(to),
		FromFile: fromName,
		ToFile:   toName,
		Context:  1,
	})
	if err != nil {
		return false, err
	}
	if text == "" {
		return false, nil
	}
	_, err = io.WriteString(r.writer, text)
	return true, err
}

func withNewlines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}
