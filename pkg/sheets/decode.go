package sheets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"parfum/internal/models"
)

// The sheet hands back whatever the spreadsheet cells contain, so every
// field arrives untyped: prices show up as numbers or strings, the stock
// flag as a bool, the word "true", or a number. decodeProduct coerces one
// raw row into a typed Product; ok is false when the row lacks a usable
// id or name and must be dropped.
func decodeProduct(raw json.RawMessage) (models.Product, bool) {
	var row map[string]interface{}
	if err := json.Unmarshal(raw, &row); err != nil {
		return models.Product{}, false
	}

	p := models.Product{
		ID:          coerceString(row["id"]),
		Name:        coerceString(row["name"]),
		Description: coerceString(row["description"]),
		Price:       coerceFloat(row["price"]),
		ImageURL:    coerceString(row["imageUrl"]),
		InStock:     coerceBool(row["inStock"]),
	}
	if p.ID == "" || p.Name == "" {
		return models.Product{}, false
	}
	return p, true
}

func coerceString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		// Sheet ids are often numeric cells.
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", s)
	}
}

// coerceFloat parses a price cell, defaulting to 0 when it cannot.
func coerceFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// coerceBool interprets the in-stock cell: a real bool, the string "true"
// in any casing, or any non-zero number. Everything else is false.
func coerceBool(v interface{}) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	case float64:
		return b != 0
	default:
		return false
	}
}
