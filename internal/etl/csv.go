package etl

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BartekS5/ingest/pkg/models"
	"github.com/BartekS5/ingest/pkg/utils"
)

const utf8BOM = "\ufeff"

func readCSV(r io.Reader) (*models.Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &ParseError{Format: string(FormatCSV), Err: errors.New("empty payload")}
	}
	if err != nil {
		return nil, &ParseError{Format: string(FormatCSV), Err: err}
	}
	header[0] = strings.TrimPrefix(header[0], utf8BOM)

	raw := make([][]string, len(header))
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Ragged rows surface here as csv.ErrFieldCount.
			return nil, &ParseError{Format: string(FormatCSV), Err: err}
		}
		for i, v := range record {
			raw[i] = append(raw[i], v)
		}
	}

	cols := make([]*models.Column, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("unnamed_%d", i)
		}
		cols[i] = inferColumn(name, raw[i])
	}

	t, err := models.NewTable(cols...)
	if err != nil {
		return nil, &ParseError{Format: string(FormatCSV), Err: err}
	}
	return t, nil
}

// inferColumn picks the narrowest type that accepts every non-empty cell:
// integer, then float, then boolean, else string. Empty cells are null.
func inferColumn(name string, cells []string) *models.Column {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		seen = true
		if isInt {
			_, isInt = utils.ConvertToInt(c)
		}
		if isFloat {
			_, isFloat = utils.ConvertToFloat(c)
		}
		if isBool {
			_, isBool = utils.ConvertToBool(c)
		}
		if !isInt && !isFloat && !isBool {
			break
		}
	}

	typ := models.TypeString
	switch {
	case !seen:
	case isInt:
		typ = models.TypeInteger
	case isFloat:
		typ = models.TypeFloat
	case isBool:
		typ = models.TypeBoolean
	}

	values := make([]any, len(cells))
	for i, c := range cells {
		if strings.TrimSpace(c) == "" {
			continue
		}
		switch typ {
		case models.TypeInteger:
			values[i], _ = utils.ConvertToInt(c)
		case models.TypeFloat:
			values[i], _ = utils.ConvertToFloat(c)
		case models.TypeBoolean:
			values[i], _ = utils.ConvertToBool(c)
		default:
			values[i] = c
		}
	}
	return &models.Column{Name: name, Type: typ, Values: values}
}
