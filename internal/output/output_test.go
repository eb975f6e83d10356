package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

// Test data structure
type testItem struct {
	Name  string `json:"name" yaml:"name"`
	Value int    `json:"value" yaml:"value"`
}

// --- NewWriter Factory Tests ---

func TestNewWriter_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSON)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*JSONWriter); !ok {
		t.Errorf("expected *JSONWriter, got %T", w)
	}
}

func TestNewWriter_JSONL(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatJSONL)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*JSONLWriter); !ok {
		t.Errorf("expected *JSONLWriter, got %T", w)
	}
}

func TestNewWriter_YAML(t *testing.T) {
	buf := &bytes.Buffer{}
	w, err := NewWriter(buf, FormatYAML)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if _, ok := w.(*YAMLWriter); !ok {
		t.Errorf("expected *YAMLWriter, got %T", w)
	}
}

func TestNewWriter_UnsupportedFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	_, err := NewWriter(buf, Format("unsupported"))
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	if !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("expected error containing 'unsupported', got %v", err)
	}
}

// --- JSONWriter Tests ---

func TestJSONWriter_Write_SingleItem_OutputsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testItem{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// A single item is still wrapped in an array so readers always see
	// the same shape.
	var result []testItem
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result))
	}

	if result[0].Name != "test" || result[0].Value != 42 {
		t.Errorf("unexpected result: %+v", result[0])
	}
}

func TestJSONWriter_Write_MultipleItems_OutputsArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testItem{Name: "first", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Write(testItem{Name: "second", Value: 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testItem
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}

	if result[0].Name != "first" || result[1].Name != "second" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	items := []any{
		testItem{Name: "a", Value: 1},
		testItem{Name: "b", Value: 2},
		testItem{Name: "c", Value: 3},
	}

	if err := w.WriteAll(items); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testItem
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 3 {
		t.Errorf("expected 3 items, got %d", len(result))
	}
}

func TestJSONWriter_Flush_PrettyPrint(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "  ")

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	output := buf.String()

	// Pretty print should contain newlines and indentation
	if !strings.Contains(output, "\n") {
		t.Errorf("expected newlines in pretty output")
	}

	if !strings.Contains(output, "  ") {
		t.Errorf("expected indentation in pretty output")
	}
}

func TestJSONWriter_Flush_Compact(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	output := buf.String()

	// Compact should not have pretty-print newlines (except the final one)
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) != 1 {
		t.Errorf("expected single line in compact output, got %d lines", len(lines))
	}
}

func TestJSONWriter_Flush_CustomIndent(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, true, "\t")

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "\t") {
		t.Errorf("expected tab indentation, got %q", output)
	}
}

func TestJSONWriter_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// Close should flush
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Buffer should have content
	if buf.Len() == 0 {
		t.Error("expected output after Close()")
	}
}

// --- JSONLWriter Tests ---

func TestJSONLWriter_Write_SingleItem(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Write(testItem{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	output := buf.String()

	// Should be a single JSON object followed by newline
	if !strings.HasSuffix(output, "\n") {
		t.Errorf("expected newline at end of line")
	}

	var result testItem
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if result.Name != "test" || result.Value != 42 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestJSONLWriter_Write_MultipleItems_SeparateLines(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Write(testItem{Name: "first", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Write(testItem{Name: "second", Value: 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), output)
	}

	// Each line should be valid JSON
	for i, line := range lines {
		var item testItem
		if err := json.Unmarshal([]byte(line), &item); err != nil {
			t.Errorf("line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONLWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	items := []any{
		testItem{Name: "a", Value: 1},
		testItem{Name: "b", Value: 2},
	}

	if err := w.WriteAll(items); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	output := buf.String()
	lines := strings.Split(strings.TrimSuffix(output, "\n"), "\n")

	if len(lines) != 2 {
		t.Errorf("expected 2 lines, got %d", len(lines))
	}
}

func TestJSONLWriter_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() == 0 {
		t.Error("expected output after Close()")
	}
}

// --- YAMLWriter Tests ---

func TestYAMLWriter_Write_SingleItem_OutputsSequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write(testItem{Name: "test", Value: 42}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// Single items keep the sequence shape too.
	var result []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result))
	}

	if result[0].Name != "test" || result[0].Value != 42 {
		t.Errorf("unexpected result: %+v", result[0])
	}
}

func TestYAMLWriter_Write_MultipleItems(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write(testItem{Name: "first", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Write(testItem{Name: "second", Value: 2}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}
}

func TestYAMLWriter_WriteAll(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	items := []any{
		testItem{Name: "a", Value: 1},
		testItem{Name: "b", Value: 2},
	}

	if err := w.WriteAll(items); err != nil {
		t.Fatalf("WriteAll() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	var result []testItem
	if err := yaml.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("expected 2 items, got %d", len(result))
	}
}

func TestYAMLWriter_Close(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if buf.Len() == 0 {
		t.Error("expected output after Close()")
	}
}

// --- Option Tests ---

func TestWithPretty_Enabled(t *testing.T) {
	cfg := &writerConfig{}
	WithPretty(true)(cfg)

	if !cfg.pretty {
		t.Error("WithPretty(true) did not set pretty")
	}
}

func TestWithPretty_Disabled(t *testing.T) {
	cfg := &writerConfig{pretty: true}
	WithPretty(false)(cfg)

	if cfg.pretty {
		t.Error("WithPretty(false) did not unset pretty")
	}
}

func TestWithIndent_Custom(t *testing.T) {
	cfg := &writerConfig{}
	WithIndent("\t")(cfg)

	if cfg.indent != "\t" {
		t.Errorf("expected indent '\\t', got %q", cfg.indent)
	}
}

// --- Integration: NewWriter with Options ---

func TestNewWriter_WithOptions(t *testing.T) {
	buf := &bytes.Buffer{}

	w, err := NewWriter(buf, FormatJSON, WithPretty(false), WithIndent(""))
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	if err := w.Write(testItem{Name: "test", Value: 1}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// With pretty=false, should be compact
	output := strings.TrimSpace(buf.String())
	if strings.Contains(output, "\n") {
		t.Errorf("expected compact output, got %q", output)
	}
}

// --- Edge Cases ---

func TestJSONWriter_Empty_OutputsEmptyArray(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONWriter(buf, false, "")

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// Zero documents still produce a valid array, never null.
	output := strings.TrimSpace(buf.String())
	if output != "[]" {
		t.Errorf("expected empty array, got %q", output)
	}
}

func TestJSONLWriter_Empty(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewJSONLWriter(buf)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	// Should be empty
	if buf.Len() != 0 {
		t.Errorf("expected empty output, got %q", buf.String())
	}
}

func TestYAMLWriter_Empty_OutputsEmptySequence(t *testing.T) {
	buf := &bytes.Buffer{}
	w := NewYAMLWriter(buf)

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	output := strings.TrimSpace(buf.String())
	if output != "[]" {
		t.Errorf("expected empty sequence, got %q", output)
	}
}

// --- Items Tests ---

func TestItems_ConvertsTypedSlice(t *testing.T) {
	in := []testItem{{Name: "a", Value: 1}, {Name: "b", Value: 2}}

	out := Items(in)

	if len(out) != 2 {
		t.Fatalf("expected 2 items, got %d", len(out))
	}

	first, ok := out[0].(testItem)
	if !ok || first.Name != "a" {
		t.Errorf("unexpected first item: %#v", out[0])
	}
}

func TestItems_Empty(t *testing.T) {
	out := Items([]testItem{})

	if out == nil || len(out) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", out)
	}
}

// --- WriteFile Tests ---

func TestWriteFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")

	items := []any{
		testItem{Name: "a", Value: 1},
		testItem{Name: "b", Value: 2},
	}

	if err := WriteFile(path, FormatJSON, items); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	var result []testItem
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 2 {
		t.Errorf("expected 2 items, got %d", len(result))
	}
}

func TestWriteFile_LeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")

	items := []any{testItem{Name: "a", Value: 1}}
	if err := WriteFile(path, FormatJSON, items); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}

	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the output file, got %v", names)
	}
}

func TestWriteFile_OverwritesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.json")

	if err := os.WriteFile(path, []byte("stale"), 0o600); err != nil {
		t.Fatalf("failed to seed file: %v", err)
	}

	items := []any{testItem{Name: "fresh", Value: 1}}
	if err := WriteFile(path, FormatJSON, items); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output file: %v", err)
	}

	var result []testItem
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to unmarshal output: %v", err)
	}

	if len(result) != 1 || result[0].Name != "fresh" {
		t.Errorf("expected file to be replaced, got %+v", result)
	}
}

func TestWriteFile_UnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corpus.out")

	err := WriteFile(path, Format("xml"), []any{testItem{Name: "a"}})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}

	// The temp file must be cleaned up on failure.
	entries, readErr := os.ReadDir(dir)
	if readErr != nil {
		t.Fatalf("failed to read dir: %v", readErr)
	}

	if len(entries) != 0 {
		t.Errorf("expected empty dir after failed write, got %d entries", len(entries))
	}
}

func TestWriteFile_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "corpus.json")

	err := WriteFile(path, FormatJSON, []any{testItem{Name: "a"}})
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
