package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// JSON is an opaque JSON document (event payload, decision rationale,
// feature value, run context). It is passed through verbatim and never
// given a schema.
type JSON json.RawMessage

// MarshalJSON implements json.Marshaler
func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON implements json.Unmarshaler
func (j *JSON) UnmarshalJSON(data []byte) error {
	*j = append((*j)[0:0], data...)
	return nil
}

// Value implements driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j.IsNull() {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	switch data := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append(JSON(nil), data...)
	case string:
		*j = JSON(data)
	default:
		return fmt.Errorf("scan JSON: unsupported type %T", value)
	}
	return nil
}

// IsNull reports whether the document is absent or the JSON literal null.
func (j JSON) IsNull() bool {
	trimmed := bytes.TrimSpace(j)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// String returns the document as compact JSON text.
func (j JSON) String() string {
	if j.IsNull() {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, j); err != nil {
		return string(j)
	}
	return buf.String()
}

// Count encodes n as a raw JSON number, the form count fields take on the wire.
func Count(n int64) json.RawMessage {
	return json.RawMessage(strconv.AppendInt(nil, n, 10))
}
