package importer

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/watchvaultapp/watchvault-server/internal/errors"
)

// ParseCSV reads a watch-history CSV export into external records. The first
// row is a header; columns are matched case-insensitively. "name" (or
// "title") and "year" are required, "rating", "review" and "watched_date"
// (or "date") are optional. Unknown columns are ignored so exports from
// different services parse without preprocessing.
func ParseCSV(r io.Reader) ([]ExternalRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.Validation("empty CSV body")
	}
	if err != nil {
		return nil, errors.Validation("unreadable CSV header").WithCause(err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	nameCol, ok := cols["name"]
	if !ok {
		nameCol, ok = cols["title"]
	}
	if !ok {
		return nil, errors.Validation("CSV header must contain a name or title column")
	}
	yearCol, ok := cols["year"]
	if !ok {
		return nil, errors.Validation("CSV header must contain a year column")
	}

	var records []ExternalRecord
	row := 1
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.Validationf("row %d: malformed CSV", row).WithCause(err)
		}

		name := strings.TrimSpace(field(fields, nameCol))
		if name == "" {
			return nil, errors.Validationf("row %d: missing name", row)
		}

		year, err := strconv.Atoi(strings.TrimSpace(field(fields, yearCol)))
		if err != nil {
			return nil, errors.Validationf("row %d: invalid year %q", row, field(fields, yearCol))
		}

		rec := ExternalRecord{Name: name, Year: year}

		if i, ok := cols["rating"]; ok {
			raw := strings.TrimSpace(field(fields, i))
			if raw != "" {
				rating, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return nil, errors.Validationf("row %d: invalid rating %q", row, raw)
				}
				rec.Rating = rating
			}
		}
		if i, ok := cols["review"]; ok {
			rec.Review = strings.TrimSpace(field(fields, i))
		}
		if i, ok := cols["watched_date"]; ok {
			rec.WatchedDate = strings.TrimSpace(field(fields, i))
		} else if i, ok := cols["date"]; ok {
			rec.WatchedDate = strings.TrimSpace(field(fields, i))
		}

		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, errors.Validation("CSV contains no data rows")
	}

	return records, nil
}

// field returns fields[i] or "" when the row is shorter than the header.
func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}
