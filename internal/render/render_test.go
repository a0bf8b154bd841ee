package render

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatTable, "JSON": FormatJSON, " yaml ": FormatYAML, "tsv": FormatTSV} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("expected error for xml")
	}
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})
	if err := r.Render(nil, []string{"TASK", "OUTCOME"}, [][]string{{"move-jquery", "applied"}}); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "TASK         OUTCOME\n-----------  -------\nmove-jquery  applied\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestRenderJSONUsesData(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatJSON, Porcelain: true})
	if err := r.Render(map[string]int{"done": 3}, nil, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != `{"done":3}` {
		t.Errorf("unexpected json %q", buf.String())
	}
}

func TestRenderDiff(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{})

	changed, err := r.RenderDiff("defaults", []string{"a=1", "b=2"}, "database", []string{"a=1", "b=3"})
	if err != nil {
		t.Fatalf("RenderDiff failed: %v", err)
	}
	if !changed {
		t.Fatal("expected a difference")
	}
	out := buf.String()
	if !strings.Contains(out, "--- defaults") || !strings.Contains(out, "-b=2") || !strings.Contains(out, "+b=3") {
		t.Errorf("unexpected diff:\n%s", out)
	}

	buf.Reset()
	changed, err = r.RenderDiff("a", []string{"x"}, "b", []string{"x"})
	if err != nil || changed || buf.Len() != 0 {
		t.Errorf("expected no diff for equal input, got %q", buf.String())
	}
}

func TestRenderTableAlignsColumns(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})
	rows := [][]string{{"004", "move-jquery", "applied"}, {"005", "add-client-permissions", "already-satisfied"}}
	if err := r.Render(nil, []string{"VERSION", "TASK", "OUTCOME"}, rows); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}
	want := "004      move-jquery             applied"
	if lines[2] != want {
		t.Errorf("expected %q, got %q", want, lines[2])
	}
}

func TestRenderTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, Options{Format: FormatTable})
	if err := r.Render(nil, []string{"TASK"}, nil); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestRenderTSVAndPorcelain(t *testing.T) {
	for _, opts := range []Options{{Format: FormatTSV}, {Format: FormatTable, Porcelain: true}} {
		var buf bytes.Buffer
		if err := NewRenderer(&buf, opts).Render(nil, []string{"TASK", "OUTCOME"}, [][]string{{"a", "applied"}}); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		if want := "TASK\tOUTCOME\na\tapplied\n"; buf.String() != want {
			t.Errorf("%+v: expected %q, got %q", opts, want, buf.String())
		}
	}
}
