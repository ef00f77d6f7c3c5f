// Package snowflake holds a Discord ID type that reads and writes JSON as an
// integer, matching the config files users upload, while keeping the exact
// digits in memory.
package snowflake

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

var ErrNotInteger = errors.New("snowflake must be an integer")

type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" || id == "0" }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("0"), nil
	}
	return []byte(id), nil
}

// UnmarshalJSON accepts an integer or a string of digits. An empty string
// decodes to the zero ID.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*id = ""
			return nil
		}
		b = []byte(s)
	}
	if _, err := strconv.ParseUint(string(b), 10, 64); err != nil {
		return ErrNotInteger
	}
	if string(b) == "0" {
		*id = ""
		return nil
	}
	*id = ID(b)
	return nil
}
