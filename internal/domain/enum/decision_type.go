package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// DecisionType represents an approver's verdict on a transaction.
type DecisionType int

const (
	DecisionApproved DecisionType = iota
	DecisionRejected
)

func (d DecisionType) String() string {
	return [...]string{"APPROVED", "REJECTED"}[d]
}

func (d DecisionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *DecisionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*d = DecisionType(i)
		return nil
	}
	switch str {
	case "APPROVED":
		*d = DecisionApproved
	case "REJECTED":
		*d = DecisionRejected
	}
	return nil
}

func (d DecisionType) Value() (driver.Value, error) {
	return int64(d), nil
}

func (d *DecisionType) Scan(value interface{}) error {
	if value == nil {
		*d = DecisionApproved
		return nil
	}
	switch v := value.(type) {
	case int64:
		*d = DecisionType(v)
	case int:
		*d = DecisionType(v)
	}
	return nil
}

// ParseDecisionType maps the wire value of a decision to its enum. The second
// return value is false for anything other than APPROVED or REJECTED.
func ParseDecisionType(s string) (DecisionType, bool) {
	switch s {
	case "APPROVED":
		return DecisionApproved, true
	case "REJECTED":
		return DecisionRejected, true
	}
	return DecisionApproved, false
}
