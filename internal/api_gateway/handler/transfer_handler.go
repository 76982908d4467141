package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/interbank-transfer-saga/internal/api_gateway/middleware"
	"github.com/interbank-transfer-saga/internal/api_gateway/service"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/transaction"
)

// TransferHandler handles transfer-related HTTP requests
type TransferHandler struct {
	logger          *slog.Logger
	transferService service.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(logger *slog.Logger, transferService service.TransferService) *TransferHandler {
	return &TransferHandler{
		logger:          logger,
		transferService: transferService,
	}
}

// CreateTransfer accepts a transfer for asynchronous processing. A 202 response
// means the transfer was recorded and handed to the saga, not that it succeeded.
func (h *TransferHandler) CreateTransfer(c *gin.Context) {
	var req CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		RespondBadRequest(c, "Invalid source account ID")
		return
	}

	destinationID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		RespondBadRequest(c, "Invalid destination account ID")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		RespondBadRequest(c, "Invalid amount")
		return
	}

	correlationID := middleware.GetCorrelationID(c)

	txn, err := h.transferService.StartTransfer(c.Request.Context(), sourceID, destinationID, amount, req.Description, correlationID)
	if err != nil {
		var notFound account.ErrAccountNotFound
		switch {
		case errors.As(err, &notFound):
			RespondNotFound(c, "Account not found: "+notFound.AccountID.String())
		case errors.Is(err, account.ErrInsufficientFunds):
			RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Source account balance does not cover the transfer amount")
		case errors.Is(err, transaction.ErrInvalidAmount):
			RespondBadRequest(c, "Transfer amount must be positive")
		default:
			h.logger.Error("Failed to start transfer", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondAccepted(c, mapTransferToResponse(txn))
}

// GetTransfer handles requests to retrieve a transfer by ID
func (h *TransferHandler) GetTransfer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid transfer ID")
		return
	}

	txn, err := h.transferService.GetTransfer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, transaction.ErrTransactionNotFound{}) {
			RespondNotFound(c, "Transfer not found")
			return
		}
		h.logger.Error("Failed to get transfer", "transfer_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapTransferToResponse(txn))
}

// ListTransfers handles requests to list transfers involving an account
func (h *TransferHandler) ListTransfers(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	txns, total, err := h.transferService.ListTransfers(c.Request.Context(), accountID, params.Page, params.PerPage)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to list transfers", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransferResponse, 0, len(txns))
	for _, txn := range txns {
		responses = append(responses, mapTransferToResponse(txn))
	}

	RespondWithPaginatedData(c, 200, responses, params.Page, params.PerPage, int(total))
}

func mapTransferToResponse(txn *transaction.Transaction) TransferResponse {
	return TransferResponse{
		ID:            txn.ID.String(),
		SourceID:      txn.SourceID.String(),
		DestinationID: txn.DestinationID.String(),
		Amount:        txn.Amount.String(),
		Description:   txn.Description,
		Status:        string(txn.Status),
		Phase:         string(txn.Phase()),
		CreatedAt:     txn.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     txn.UpdatedAt.Format(time.RFC3339),
	}
}
