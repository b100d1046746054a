package request

// CreateTransactionRequest is the payload for creating a transaction
type CreateTransactionRequest struct {
	ReferenceNo string `json:"reference_no" binding:"required"`
	Amount      string `json:"amount" binding:"required"`
	Currency    string `json:"currency" binding:"required"`
	Description string `json:"description"`
}

// DecideRequest is the payload for an approval or rejection
type DecideRequest struct {
	Decision string `json:"decision" binding:"required"`
	Comment  string `json:"comment"`
}

// CaptureSnapshotRequest is the payload for capturing an entity snapshot
type CaptureSnapshotRequest struct {
	EntityType string      `json:"entity_type" binding:"required"`
	Data       interface{} `json:"data" binding:"required"`
}

// RecordRetryRequest is the payload for recording a retry attempt outcome
type RecordRetryRequest struct {
	Status       string `json:"status" binding:"required"`
	ErrorMessage string `json:"error_message"`
}

// DeliveryResultRequest is the payload for reporting a delivery outcome
type DeliveryResultRequest struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// RegisterRequest is the payload for account registration
type RegisterRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
