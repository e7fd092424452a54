package importer

import (
	"strings"
	"testing"
)

func TestDetectSeparator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   rune
	}{
		{name: "comma", header: "name,description,website", want: ','},
		{name: "semicolon beats comma", header: "name;description;website", want: ';'},
		{name: "pipe wins outright", header: "name|description,with,commas|website", want: '|'},
		{name: "single column", header: "name", want: ','},
		{name: "semicolon minority stays comma", header: "name,descr;iption,website", want: ','},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DetectSeparator(tc.header)
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	csv := "\ufeffname|founded_year|stage\n" +
		"Bending Spoons|2013|growth\n" +
		"||\n" +
		"  Satispay  |2013|series_c\n"

	table, err := Parse(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantHeader := []string{"name", "founded_year", "stage"}
	if len(table.Header) != len(wantHeader) {
		t.Fatalf("got %d header columns, want %d", len(table.Header), len(wantHeader))
	}
	for i, col := range wantHeader {
		if table.Header[i] != col {
			t.Fatalf("header[%d]: got %q, want %q", i, table.Header[i], col)
		}
	}

	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (empty row dropped)", len(table.Rows))
	}
	if table.Rows[1][0] != "Satispay" {
		t.Fatalf("got %q, want %q", table.Rows[1][0], "Satispay")
	}
}

func TestParseSemicolonSeparator(t *testing.T) {
	t.Parallel()

	table, err := Parse(strings.NewReader("name;headquarters\nExor;Torino, Italia\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(table.Rows))
	}
	if got := table.Rows[0][1]; got != "Torino, Italia" {
		t.Fatalf("got %q, want %q", got, "Torino, Italia")
	}
}

func TestParseRejectsDuplicateColumns(t *testing.T) {
	t.Parallel()

	if _, err := Parse(strings.NewReader("name,name\nA,B\n")); err == nil {
		t.Fatal("expected error for duplicate header columns, got nil")
	}
}

func TestParseRejectsEmptyFile(t *testing.T) {
	t.Parallel()

	if _, err := Parse(strings.NewReader("   \n")); err == nil {
		t.Fatal("expected error for empty file, got nil")
	}
}

func TestParseEmployeeCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int64
		ok    bool
	}{
		{name: "plain number", input: "25", want: 25, ok: true},
		{name: "range midpoint", input: "11-50", want: 30, ok: true},
		{name: "range with spaces", input: " 51 - 200 ", want: 125, ok: true},
		{name: "trailing plus", input: "500+", want: 500, ok: true},
		{name: "embedded number", input: "circa 40 dipendenti", want: 40, ok: true},
		{name: "no digits", input: "many", ok: false},
		{name: "blank", input: "  ", ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseEmployeeCount(tc.input)
			if ok != tc.ok {
				t.Fatalf("got ok=%v, want %v", ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}
