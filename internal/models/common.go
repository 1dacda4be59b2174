package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// APIResponse is the generic envelope for simple message responses.
type APIResponse struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StringList stores a JSON array in a single text column.
// Used for question options.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	raw, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, (*[]string)(l))
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(l))
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}
