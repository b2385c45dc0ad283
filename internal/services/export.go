package services

import (
	"bytes"
	"encoding/csv"
	"sort"
	"strconv"
)

type EvaluationRow struct {
	PropertyID   int64
	PropertyName string
	TotalScore   int
	StarRating   int
	SubmittedAt  string // ISO8601 suggested; string for CSV simplicity
}

// ExportEvaluationsCSV renders one row per evaluated property.
func ExportEvaluationsCSV(rows []EvaluationRow) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"property_id", "property_name", "total_score", "star_rating", "submitted_at"})
	for _, r := range rows {
		rec := []string{
			strconv.FormatInt(r.PropertyID, 10),
			r.PropertyName,
			strconv.Itoa(r.TotalScore),
			strconv.Itoa(r.StarRating),
			r.SubmittedAt,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportCategoryCSV renders a wide-format CSV with property-per-row and one
// column per category. inputs is a map[propertyID]map[category]score. Cells
// for categories a property was never scored on are left empty.
func ExportCategoryCSV(inputs map[int64]map[string]int) ([]byte, error) {
	categorySet := map[string]struct{}{}
	for _, m := range inputs {
		for c := range m {
			categorySet[c] = struct{}{}
		}
	}
	categories := make([]string, 0, len(categorySet))
	for c := range categorySet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	ids := make([]int64, 0, len(inputs))
	for id := range inputs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := append([]string{"property_id"}, categories...)
	_ = w.Write(header)
	for _, id := range ids {
		row := make([]string, 0, 1+len(categories))
		row = append(row, strconv.FormatInt(id, 10))
		for _, c := range categories {
			if score, ok := inputs[id][c]; ok {
				row = append(row, strconv.Itoa(score))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
