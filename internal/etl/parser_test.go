package etl

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BartekS5/ingest/pkg/models"
	"github.com/parquet-go/parquet-go"
)

type tripRow struct {
	VendorID   int64     `parquet:"VendorID"`
	Pickup     time.Time `parquet:"lpep_pickup_datetime"`
	Fare       *float64  `parquet:"fare_amount,optional"`
	StoreFlag  string    `parquet:"store_and_fwd_flag"`
	Passengers int32     `parquet:"passenger_count"`
}

type nestedRow struct {
	ID  int64 `parquet:"id"`
	Loc struct {
		Lat float64 `parquet:"lat"`
	} `parquet:"loc"`
}

func writeParquet[T any](t *testing.T, rows []T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		t.Fatalf("write parquet fixture: %v", err)
	}
	return buf.Bytes()
}

func tripFixture(t *testing.T) ([]tripRow, []byte) {
	fare := 12.5
	base := time.Date(2025, 11, 1, 8, 30, 0, 0, time.UTC)
	rows := []tripRow{
		{VendorID: 2, Pickup: base, Fare: &fare, StoreFlag: "N", Passengers: 1},
		{VendorID: 1, Pickup: base.Add(time.Minute), Fare: nil, StoreFlag: "Y", Passengers: 3},
	}
	return rows, writeParquet(t, rows)
}

func TestParseParquet(t *testing.T) {
	_, data := tripFixture(t)

	tbl, err := Parse(FormatParquet, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.NumRows != 2 {
		t.Fatalf("NumRows = %d, want 2", tbl.NumRows)
	}

	want := []models.ColumnDef{
		{Name: "VendorID", Type: models.TypeInteger},
		{Name: "lpep_pickup_datetime", Type: models.TypeTimestamp},
		{Name: "fare_amount", Type: models.TypeFloat},
		{Name: "store_and_fwd_flag", Type: models.TypeString},
		{Name: "passenger_count", Type: models.TypeInteger},
	}
	got := tbl.Schema()
	if len(got) != len(want) {
		t.Fatalf("schema = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %v, want %v", i, got[i], want[i])
		}
	}

	rows := tbl.Rows(0, 2)
	if rows[0][0] != int64(2) || rows[1][3] != "Y" || rows[1][4] != int64(3) {
		t.Errorf("unexpected rows %v", rows)
	}
	if rows[0][2] != 12.5 {
		t.Errorf("fare = %v, want 12.5", rows[0][2])
	}
	if rows[1][2] != nil {
		t.Errorf("missing fare should be null, got %v", rows[1][2])
	}
	pickup, ok := rows[1][1].(time.Time)
	if !ok || !pickup.Equal(time.Date(2025, 11, 1, 8, 31, 0, 0, time.UTC)) {
		t.Errorf("pickup = %v", rows[1][1])
	}
}

func TestParseParquetFile(t *testing.T) {
	_, data := tripFixture(t)
	path := filepath.Join(t.TempDir(), "green.parquet")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := ParseFile(FormatParquet, path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if tbl.NumRows != 2 {
		t.Errorf("NumRows = %d", tbl.NumRows)
	}
}

func TestParseParquetRejectsNested(t *testing.T) {
	data := writeParquet(t, []nestedRow{{ID: 1}})

	_, err := Parse(FormatParquet, data)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if pe.Column != "loc" {
		t.Errorf("Column = %q, want loc", pe.Column)
	}
}

func TestParseMalformedPayload(t *testing.T) {
	for _, format := range []Format{FormatParquet, FormatCSV} {
		var payload []byte
		if format == FormatParquet {
			payload = []byte("<html>not a parquet file</html>")
		}
		_, err := Parse(format, payload)
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("%s: expected ParseError, got %v", format, err)
		}
	}
}

func TestParseCSV(t *testing.T) {
	data := []byte("\ufeffLocationID,Borough,Zone,service_zone,ratio,active\n" +
		"1,EWR,Newark Airport,EWR,0.5,true\n" +
		"2,Queens,Jamaica Bay,Boro Zone,,false\n" +
		",Unknown,,,1,true\n")

	tbl, err := Parse(FormatCSV, data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.NumRows != 3 {
		t.Fatalf("NumRows = %d", tbl.NumRows)
	}

	types := map[string]models.ColumnType{
		"LocationID":   models.TypeInteger,
		"Borough":      models.TypeString,
		"Zone":         models.TypeString,
		"service_zone": models.TypeString,
		"ratio":        models.TypeFloat,
		"active":       models.TypeBoolean,
	}
	for name, want := range types {
		col := tbl.Column(name)
		if col == nil {
			t.Errorf("missing column %s", name)
			continue
		}
		if col.Type != want {
			t.Errorf("%s type = %s, want %s", name, col.Type, want)
		}
	}

	id := tbl.Column("LocationID").Values
	if id[0] != int64(1) || id[2] != nil {
		t.Errorf("LocationID values = %v", id)
	}
	if v := tbl.Column("Zone").Values[2]; v != nil {
		t.Errorf("empty cell should be null, got %v", v)
	}
	if v := tbl.Column("ratio").Values[1]; v != nil {
		t.Errorf("empty ratio should be null, got %v", v)
	}
}

func TestParseCSVRaggedRow(t *testing.T) {
	_, err := Parse(FormatCSV, []byte("a,b\n1,2\n3\n"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseCSVHeaderOnly(t *testing.T) {
	tbl, err := Parse(FormatCSV, []byte("a,b\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if tbl.NumRows != 0 || len(tbl.Columns) != 2 {
		t.Errorf("got %d rows and %d columns", tbl.NumRows, len(tbl.Columns))
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		url     string
		want    Format
		wantErr bool
	}{
		{"https://d37ci6vzurychx.cloudfront.net/trip-data/green_tripdata_2025-11.parquet", FormatParquet, false},
		{"https://example.com/taxi_zone_lookup.CSV?raw=1", FormatCSV, false},
		{"https://example.com/file.pq", FormatParquet, false},
		{"https://example.com/download", "", true},
	}
	for _, tt := range tests {
		got, err := DetectFormat(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("DetectFormat(%q) error = %v", tt.url, err)
			continue
		}
		if got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" Parquet "); err != nil || f != FormatParquet {
		t.Errorf("ParseFormat(Parquet) = %q, %v", f, err)
	}
	if _, err := ParseFormat("json"); err == nil {
		t.Error("expected error for json")
	}
}
