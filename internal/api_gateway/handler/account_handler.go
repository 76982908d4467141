package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/interbank-transfer-saga/internal/api_gateway/service"
	"github.com/interbank-transfer-saga/internal/domain/account"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	logger         *slog.Logger
	accountService service.AccountService
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(logger *slog.Logger, accountService service.AccountService) *AccountHandler {
	return &AccountHandler{
		logger:         logger,
		accountService: accountService,
	}
}

// CreateAccount handles account registration requests
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request: "+err.Error())
		return
	}

	balance, err := decimal.NewFromString(req.InitialBalance)
	if err != nil {
		RespondBadRequest(c, "Invalid initial balance")
		return
	}

	acct, err := h.accountService.CreateAccount(c.Request.Context(), req.OwnerName, balance, req.Bank)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrEmptyOwnerName),
			errors.Is(err, account.ErrEmptyBankRef),
			errors.Is(err, account.ErrNegativeBalance):
			RespondBadRequest(c, err.Error())
		default:
			h.logger.Error("Failed to create account", "error", err)
			RespondInternalError(c)
		}
		return
	}

	RespondCreated(c, mapAccountToResponse(acct))
}

// GetAccount handles requests to retrieve an account by ID
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	acct, err := h.accountService.GetAccount(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to get account", "account_id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapAccountToResponse(acct))
}

// ListAccounts handles requests to list registered accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	accounts, total, err := h.accountService.ListAccounts(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list accounts", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]AccountResponse, 0, len(accounts))
	for _, acct := range accounts {
		responses = append(responses, mapAccountToResponse(acct))
	}

	RespondWithPaginatedData(c, 200, responses, params.Page, params.PerPage, int(total))
}

func mapAccountToResponse(acct *account.Account) AccountResponse {
	return AccountResponse{
		ID:        acct.ID.String(),
		OwnerName: acct.OwnerName,
		Balance:   acct.Balance.String(),
		Bank:      acct.Bank,
		CreatedAt: acct.CreatedAt.Format(time.RFC3339),
		UpdatedAt: acct.UpdatedAt.Format(time.RFC3339),
	}
}
