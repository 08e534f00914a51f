package models

import "testing"

func TestNewTableRejectsRaggedColumns(t *testing.T) {
	_, err := NewTable(
		&Column{Name: "a", Values: []any{int64(1), int64(2)}},
		&Column{Name: "b", Values: []any{"x"}},
	)
	if err == nil {
		t.Fatal("expected error for columns of different length")
	}
}

func TestRowsClampsRange(t *testing.T) {
	tbl, err := NewTable(
		&Column{Name: "a", Type: TypeInteger, Values: []any{int64(1), int64(2), int64(3)}},
		&Column{Name: "b", Type: TypeString, Values: []any{"x", nil, "z"}},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	rows := tbl.Rows(1, 10)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != int64(2) || rows[0][1] != nil {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if rows[1][1] != "z" {
		t.Errorf("unexpected second row: %v", rows[1])
	}
	if got := tbl.Rows(3, 3); got != nil {
		t.Errorf("expected no rows for empty range, got %v", got)
	}
}

func TestParseWriteMode(t *testing.T) {
	tests := []struct {
		in      string
		want    WriteMode
		wantErr bool
	}{
		{"", ModeReplace, false},
		{"replace", ModeReplace, false},
		{" Append ", ModeAppend, false},
		{"upsert", "", true},
	}
	for _, tt := range tests {
		got, err := ParseWriteMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWriteMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWriteMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
