package db

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nhath/gamedash/internal/record"
)

// scanRecords reads every row into an ordered record
func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, WrapQueryError(err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, WrapQueryError(err)
	}

	out := []record.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, WrapQueryError(err)
		}

		var rec record.Record
		for i, name := range columns {
			rec.Set(name, jsonValue(values[i], types[i].DatabaseTypeName()))
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, WrapQueryError(err)
	}
	return out, nil
}

// jsonValue converts a scanned value into something json.Marshal renders
// the way the column reads. MySQL hands back numeric columns as bytes.
func jsonValue(v any, dbType string) any {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		s := string(val)
		if isNumericType(dbType) {
			if _, err := strconv.ParseFloat(s, 64); err == nil {
				return json.Number(s)
			}
		}
		if utf8.ValidString(s) {
			return s
		}
		return val
	case time.Time:
		return val.Format("2006-01-02T15:04:05")
	default:
		return val
	}
}

func isNumericType(t string) bool {
	t = strings.ToUpper(t)
	for _, s := range []string{"INT", "DECIMAL", "NUMERIC", "FLOAT", "DOUBLE", "REAL"} {
		if strings.Contains(t, s) {
			return true
		}
	}
	return false
}
