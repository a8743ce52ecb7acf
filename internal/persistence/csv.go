package persistence

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"whatstoeat/internal/models"
)

// requiredColumns are the headers a menu CSV must carry.
var requiredColumns = []string{"id", "name", "price", "calories", "diet", "flavor"}

// RowError reports a single rejected CSV row. Row numbers count the
// header as row 1, matching what a user sees in a spreadsheet.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

// ImportCSV parses menu rows into meals. Malformed rows are collected as
// RowErrors while the rest of the import proceeds (partial success); a
// missing required column aborts the whole import with ErrParse.
func ImportCSV(r io.Reader) ([]*models.Meal, []RowError, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading CSV header: %v", ErrParse, err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, nil, fmt.Errorf("%w: CSV missing required column %q", ErrParse, col)
		}
	}

	var (
		meals    []*models.Meal
		rowErrs  []RowError
		rowIndex = 1
	)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowIndex++
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowIndex, Err: err})
			continue
		}
		meal, err := parseRow(record, columns)
		if err != nil {
			rowErrs = append(rowErrs, RowError{Row: rowIndex, Err: err})
			continue
		}
		meals = append(meals, meal)
	}
	return meals, rowErrs, nil
}

func parseRow(record []string, columns map[string]int) (*models.Meal, error) {
	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	price, err := strconv.ParseFloat(field("price"), 64)
	if err != nil {
		return nil, fmt.Errorf("bad price %q", field("price"))
	}
	// Calories arrive as "450" or "450.0" depending on the exporter.
	caloriesF, err := strconv.ParseFloat(field("calories"), 64)
	if err != nil {
		return nil, fmt.Errorf("bad calories %q", field("calories"))
	}

	return models.NewMeal(field("id"), field("name"), price, int(caloriesF), field("diet"), field("flavor"))
}
