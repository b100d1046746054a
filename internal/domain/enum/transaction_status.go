package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// TransactionStatus represents the lifecycle status of a transaction.
// Transitions are monotonic: once a transaction reaches Approved, Rejected
// or Completed it never leaves that status.
type TransactionStatus int

const (
	TransactionStatusPending TransactionStatus = iota
	TransactionStatusPendingApproval
	TransactionStatusApproved
	TransactionStatusRejected
	TransactionStatusCompleted
)

func (s TransactionStatus) String() string {
	return [...]string{"PENDING", "PENDING_APPROVAL", "APPROVED", "REJECTED", "COMPLETED"}[s]
}

// IsTerminal reports whether no further approval decisions are accepted.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusApproved || s == TransactionStatusRejected || s == TransactionStatusCompleted
}

func (s TransactionStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TransactionStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = TransactionStatus(i)
		return nil
	}
	switch str {
	case "PENDING":
		*s = TransactionStatusPending
	case "PENDING_APPROVAL":
		*s = TransactionStatusPendingApproval
	case "APPROVED":
		*s = TransactionStatusApproved
	case "REJECTED":
		*s = TransactionStatusRejected
	case "COMPLETED":
		*s = TransactionStatusCompleted
	}
	return nil
}

func (s TransactionStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *TransactionStatus) Scan(value interface{}) error {
	if value == nil {
		*s = TransactionStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = TransactionStatus(v)
	case int:
		*s = TransactionStatus(v)
	}
	return nil
}
