package csvimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	listingapp "github.com/ryznreal/offers/internal/application/listing"
	"github.com/shopspring/decimal"
)

// DefaultMaxRows matches the largest JSON import batch
const DefaultMaxRows = 1000

// RequiredColumns must appear in the header of a property file
var RequiredColumns = []string{"type", "city"}

type columnKind int

const (
	kindString columnKind = iota
	kindEnum
	kindInt
	kindDecimal
	kindBool
)

type column struct {
	kind columnKind
	set  func(req *listingapp.PropertyRequest, raw string, parsed any)
}

func stringColumn(set func(*listingapp.PropertyRequest, string)) column {
	return column{kind: kindString, set: func(r *listingapp.PropertyRequest, raw string, _ any) { set(r, raw) }}
}

func enumColumn(set func(*listingapp.PropertyRequest, string)) column {
	return column{kind: kindEnum, set: func(r *listingapp.PropertyRequest, _ string, v any) { set(r, v.(string)) }}
}

func intColumn(set func(*listingapp.PropertyRequest, int)) column {
	return column{kind: kindInt, set: func(r *listingapp.PropertyRequest, _ string, v any) { set(r, v.(int)) }}
}

func decimalColumn(set func(*listingapp.PropertyRequest, decimal.Decimal)) column {
	return column{kind: kindDecimal, set: func(r *listingapp.PropertyRequest, _ string, v any) { set(r, v.(decimal.Decimal)) }}
}

func boolColumn(set func(*listingapp.PropertyRequest, bool)) column {
	return column{kind: kindBool, set: func(r *listingapp.PropertyRequest, _ string, v any) { set(r, v.(bool)) }}
}

// columns maps normalized header names to PropertyRequest fields. The
// names follow the JSON field names of the import API.
var columns = map[string]column{
	"id":           stringColumn(func(r *listingapp.PropertyRequest, v string) { r.ID = v }),
	"type":         enumColumn(func(r *listingapp.PropertyRequest, v string) { r.Type = v }),
	"city":         stringColumn(func(r *listingapp.PropertyRequest, v string) { r.City = v }),
	"district":     stringColumn(func(r *listingapp.PropertyRequest, v string) { r.District = v }),
	"developer":    stringColumn(func(r *listingapp.PropertyRequest, v string) { r.Developer = v }),
	"project_name": stringColumn(func(r *listingapp.PropertyRequest, v string) { r.ProjectName = v }),
	"price":        decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.Price = v }),
	"map_url":      stringColumn(func(r *listingapp.PropertyRequest, v string) { r.MapURL = v }),

	"status":      enumColumn(func(r *listingapp.PropertyRequest, v string) { r.Status = v }),
	"unit_type":   enumColumn(func(r *listingapp.PropertyRequest, v string) { r.UnitType = v }),
	"rooms":       intColumn(func(r *listingapp.PropertyRequest, v int) { r.Rooms = v }),
	"bathrooms":   intColumn(func(r *listingapp.PropertyRequest, v int) { r.Bathrooms = v }),
	"area":        decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.Area = v }),
	"floor":       stringColumn(func(r *listingapp.PropertyRequest, v string) { r.Floor = v }),
	"finishing":   enumColumn(func(r *listingapp.PropertyRequest, v string) { r.Finishing = v }),
	"year_built":  intColumn(func(r *listingapp.PropertyRequest, v int) { r.YearBuilt = v }),
	"notes":       stringColumn(func(r *listingapp.PropertyRequest, v string) { r.Notes = v }),
	"unit_number": stringColumn(func(r *listingapp.PropertyRequest, v string) { r.UnitNumber = v }),

	"land_area":          decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.LandArea = v }),
	"price_per_meter":    decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.PricePerMeter = v }),
	"total_price":        decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.TotalPrice = v }),
	"land_width":         decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.LandWidth = v }),
	"land_depth":         decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.LandDepth = v }),
	"street_width":       decimalColumn(func(r *listingapp.PropertyRequest, v decimal.Decimal) { r.StreetWidth = v }),
	"is_corner":          boolColumn(func(r *listingapp.PropertyRequest, v bool) { r.IsCorner = v }),
	"land_use":           enumColumn(func(r *listingapp.PropertyRequest, v string) { r.LandUse = v }),
	"investment_allowed": boolColumn(func(r *listingapp.PropertyRequest, v bool) { r.InvestmentAllowed = v }),
	"land_notes":         stringColumn(func(r *listingapp.PropertyRequest, v string) { r.LandNotes = v }),
}

// ParseProperties reads a property CSV into import requests, in file
// order. Unknown columns are ignored. Any unreadable row fails the whole
// file with *RowErrors; a file-level problem returns one of the Err*
// values.
func ParseProperties(r io.Reader, maxRows int) ([]listingapp.PropertyRequest, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	parser, err := NewCSVParser(r)
	if err != nil {
		return nil, err
	}
	if err := parser.ParseHeader(); err != nil {
		return nil, err
	}
	if missing := parser.MissingHeaders(RequiredColumns); len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing column(s) %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	errs := NewErrorCollection(0)
	var reqs []listingapp.PropertyRequest
	for {
		row, err := parser.ReadRow()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs.Add(RowError{Row: parser.currentRow, Code: ErrCodeMalformedRow, Message: err.Error()})
			continue
		}
		if row.IsEmpty() {
			continue
		}
		if len(reqs) == maxRows {
			errs.Add(RowError{
				Row:     row.LineNumber,
				Code:    ErrCodeTooManyRows,
				Message: fmt.Sprintf("a file may hold at most %d properties", maxRows),
			})
			break
		}
		if req, ok := parseRow(row, parser.Headers(), errs); ok {
			reqs = append(reqs, req)
		}
	}

	if errs.HasErrors() {
		return nil, &RowErrors{ErrorCollection: errs}
	}
	if len(reqs) == 0 {
		return nil, ErrNoDataRows
	}
	return reqs, nil
}

func parseRow(row *Row, headers []string, errs *ErrorCollection) (listingapp.PropertyRequest, bool) {
	var req listingapp.PropertyRequest
	ok := true

	for _, name := range RequiredColumns {
		if row.Get(name) == "" {
			errs.AddRequiredError(row.LineNumber, name)
			ok = false
		}
	}

	for _, name := range headers {
		col, known := columns[name]
		raw := row.Get(name)
		if !known || raw == "" {
			continue
		}
		parsed, expected, err := parseValue(col.kind, raw)
		if err != nil {
			errs.AddTypeError(row.LineNumber, name, expected, raw)
			ok = false
			continue
		}
		col.set(&req, raw, parsed)
	}
	return req, ok
}

func parseValue(kind columnKind, raw string) (any, string, error) {
	switch kind {
	case kindEnum:
		return NormalizeHeader(raw), "", nil
	case kindInt:
		v, err := strconv.Atoi(stripNumber(raw))
		return v, "an integer", err
	case kindDecimal:
		v, err := decimal.NewFromString(stripNumber(raw))
		return v, "a number", err
	case kindBool:
		v, err := parseBool(raw)
		return v, "yes or no", err
	}
	return raw, "", nil
}

// stripNumber removes thousands separators and spaces, "1,500,000" -> "1500000"
func stripNumber(s string) string {
	return strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean value: %s", s)
}
