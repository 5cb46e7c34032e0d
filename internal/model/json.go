package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// jsonValue marshals a document column for storage
func jsonValue(v interface{}) (driver.Value, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// jsonScan unmarshals a document column from the driver value
func jsonScan(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch raw := value.(type) {
	case []byte:
		return json.Unmarshal(raw, dest)
	case string:
		return json.Unmarshal([]byte(raw), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// StringList is a JSON-encoded list column (images, tags, available dates)
type StringList []string

func (l StringList) Value() (driver.Value, error) { return jsonValue(l) }
func (l *StringList) Scan(value interface{}) error {
	return jsonScan(value, l)
}
