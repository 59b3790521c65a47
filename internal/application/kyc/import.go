package kyc

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
)

// IDPrefix is prepended to the omang value to form the record id during bulk
// import.
const IDPrefix = "ID"

// ImportResult is the aggregate acknowledgment of a bulk import.
type ImportResult struct {
	Imported int
	Skipped  int
}

// ImportCSV reads a header-first CSV stream and upserts one record per row,
// sequentially in file order. The identifier comes from the "omang" column,
// or from an "id" column with the IDPrefix stripped (so master-export output
// re-imports cleanly). Rows without an identifier, and rows the codec cannot
// parse, are skipped silently and only counted; an error from the underlying
// stream aborts the import, since it would recur on every read. The display
// name is taken from "name" or "full_name"; imported records get the default
// non-alert status and a fresh created_at.
func (uc *CustomerUseCase) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		return res, fmt.Errorf("read csv header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("read csv row: %w", err)
		}

		omang := cell(row, cols, "omang")
		if omang == "" {
			if id := cell(row, cols, "id"); strings.HasPrefix(id, IDPrefix) {
				omang = strings.TrimPrefix(id, IDPrefix)
			}
		}
		if omang == "" {
			res.Skipped++
			continue
		}

		name := cell(row, cols, "name")
		if name == "" {
			name = cell(row, cols, entity.FieldFullName)
		}

		fields := map[string]any{
			entity.FieldFullName:  name,
			entity.FieldPIPStatus: entity.PIPNone,
			entity.FieldCreatedAt: uc.timestamp(),
		}
		if err := uc.coll.Set(ctx, IDPrefix+omang, fields, true); err != nil {
			return res, fmt.Errorf("upsert %s%s: %w", IDPrefix, omang, err)
		}
		res.Imported++
	}
	return res, nil
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
