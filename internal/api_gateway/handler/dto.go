package handler

// CreateAccountRequest represents a request to register an account
type CreateAccountRequest struct {
	OwnerName      string `json:"owner_name" binding:"required"`
	InitialBalance string `json:"initial_balance" binding:"required"`
	Bank           string `json:"bank" binding:"required"`
}

// AccountResponse represents an account in API responses
type AccountResponse struct {
	ID        string `json:"id"`
	OwnerName string `json:"owner_name"`
	Balance   string `json:"balance"`
	Bank      string `json:"bank"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateTransferRequest represents a request to start a transfer
type CreateTransferRequest struct {
	SourceID      string `json:"source_id" binding:"required,uuid"`
	DestinationID string `json:"destination_id" binding:"required,uuid"`
	Amount        string `json:"amount" binding:"required"`
	Description   string `json:"description"`
}

// TransferResponse represents a transfer in API responses. Phase is derived
// from the record; bank leg identifiers are not exposed.
type TransferResponse struct {
	ID            string `json:"id"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	Status        string `json:"status"`
	Phase         string `json:"phase"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// FlowResponse represents a completed transfer in the money-flow report
type FlowResponse struct {
	TransactionID string `json:"transaction_id"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	Amount        string `json:"amount"`
	Description   string `json:"description"`
	CompletedAt   string `json:"completed_at"`
}

// CounterpartyTotalResponse aggregates flows between an account and one counterparty
type CounterpartyTotalResponse struct {
	CounterpartyID string `json:"counterparty_id"`
	Sent           string `json:"sent"`
	Received       string `json:"received"`
	Transfers      int64  `json:"transfers"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
