package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Time is a UTC instant. It marshals to RFC3339 in JSON and maps to
// timestamptz columns.
type Time struct {
	time.Time
}

func NewTime(t time.Time) Time {
	return Time{
		Time: t.UTC(),
	}
}

func (t Time) Equal(other Time) bool {
	return t.Time.Equal(other.Time)
}

func (t *Time) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	t.Time = parsed.UTC()
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

func (t *Time) Scan(src interface{}) error {
	if src == nil {
		t.Time = time.Time{}
		return nil
	}

	if v, ok := src.(time.Time); ok {
		t.Time = v.UTC()
		return nil
	}
	return fmt.Errorf("cannot scan %T", src)
}

func (t Time) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}
