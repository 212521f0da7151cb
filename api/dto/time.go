package dto

import (
	"encoding/json"
	"fmt"
	"time"
)

// Time accepts ISO-8601 inputs with or without an offset. Naive values
// are interpreted as UTC.
type Time struct {
	time.Time
}

var acceptedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range acceptedLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid datetime %q", raw)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.UTC().Format(time.RFC3339))
}

// Ptr converts an optional wire timestamp onto the internal shape.
func (t *Time) Ptr() *time.Time {
	if t == nil {
		return nil
	}
	value := t.Time
	return &value
}
