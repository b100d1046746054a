package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// AttemptStatus is shared by retry attempts and outbound delivery attempts:
// an attempt is pending until a worker reports a terminal outcome.
type AttemptStatus int

const (
	AttemptStatusPending AttemptStatus = iota
	AttemptStatusCompleted
	AttemptStatusFailed
)

// ParseAttemptStatus converts the wire representation of a status
func ParseAttemptStatus(s string) (AttemptStatus, bool) {
	switch s {
	case "PENDING":
		return AttemptStatusPending, true
	case "COMPLETED":
		return AttemptStatusCompleted, true
	case "FAILED":
		return AttemptStatusFailed, true
	default:
		return AttemptStatusPending, false
	}
}

func (s AttemptStatus) String() string {
	return [...]string{"PENDING", "COMPLETED", "FAILED"}[s]
}

func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptStatusCompleted || s == AttemptStatusFailed
}

func (s AttemptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *AttemptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = AttemptStatus(i)
		return nil
	}
	switch str {
	case "PENDING":
		*s = AttemptStatusPending
	case "COMPLETED":
		*s = AttemptStatusCompleted
	case "FAILED":
		*s = AttemptStatusFailed
	}
	return nil
}

func (s AttemptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *AttemptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = AttemptStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = AttemptStatus(v)
	case int:
		*s = AttemptStatus(v)
	}
	return nil
}
