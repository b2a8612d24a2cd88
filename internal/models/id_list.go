package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// IDList is a list of foreign ids stored as a JSON array column.
type IDList []uint

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]uint(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *IDList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("IDList: unsupported scan type %T", src)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("IDList: %w", err)
	}
	*l = ids
	return nil
}

// GormDataType keeps the column portable across sqlite, mysql and postgres.
func (IDList) GormDataType() string { return "text" }
