package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// RowError records one skipped import row with a human-readable reason.
type RowError struct {
	Row    int
	Reason string
}

// ImportResult summarizes a bulk import: how many products were added and
// which rows were skipped.
type ImportResult struct {
	Added   int
	Skipped []RowError
}

// Summary renders the import outcome for the admin: the added count plus up
// to five skip reasons and a truncation count.
func (r *ImportResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ Импортировано: %d товар(ов)\n", r.Added)
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n⚠️ Пропущено %d строк:\n", len(r.Skipped))
		shown := r.Skipped
		if len(shown) > 5 {
			shown = shown[:5]
		}
		for i, s := range shown {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Строка %d: %s", s.Row, s.Reason)
		}
		if rest := len(r.Skipped) - 5; rest > 0 {
			fmt.Fprintf(&b, "\n... и ещё %d", rest)
		}
	}
	return b.String()
}

// ImportSpreadsheet reads a workbook where each row is (name, description,
// price) and creates a product per valid row. Rows without a name are treated
// as blank separators and skipped silently; malformed rows are recorded and
// the import continues.
func (s *CatalogService) ImportSpreadsheet(content io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(content)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for idx, row := range rows {
		rowNum := idx + 1

		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		if len(row) < 3 {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "недостаточно колонок"})
			continue
		}

		name := strings.TrimSpace(row[0])
		description := strings.TrimSpace(row[1])

		price, err := parseDecimal(row[2])
		if err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "неверная цена"})
			continue
		}
		if err := ValidateName(name); err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "название слишком длинное"})
			continue
		}
		if err := ValidateDescription(description); err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "описание слишком длинное"})
			continue
		}
		if err := validatePriceRange(price); err != nil {
			result.Skipped = append(result.Skipped, RowError{Row: rowNum, Reason: "цена вне диапазона"})
			continue
		}

		if _, err := s.products.Create(name, description, price, ""); err != nil {
			return result, err
		}
		result.Added++
	}

	return result, nil
}
