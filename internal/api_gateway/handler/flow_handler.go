package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/interbank-transfer-saga/internal/api_gateway/service"
	"github.com/interbank-transfer-saga/internal/domain/account"
	"github.com/interbank-transfer-saga/internal/domain/flow"
)

// FlowHandler handles money-flow reporting requests
type FlowHandler struct {
	logger      *slog.Logger
	flowService service.FlowService
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(logger *slog.Logger, flowService service.FlowService) *FlowHandler {
	return &FlowHandler{
		logger:      logger,
		flowService: flowService,
	}
}

// ListFlows handles requests to list completed transfers involving an account
func (h *FlowHandler) ListFlows(c *gin.Context) {
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

	flows, err := h.flowService.ListFlows(c.Request.Context(), accountID, params.Page, params.PerPage)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to list flows", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]FlowResponse, 0, len(flows))
	for _, f := range flows {
		responses = append(responses, mapFlowToResponse(f))
	}

	RespondWithData(c, http.StatusOK, responses)
}

// CounterpartyTotals handles requests for per-counterparty flow aggregates
func (h *FlowHandler) CounterpartyTotals(c *gin.Context) {
	accountID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondBadRequest(c, "Invalid account ID")
		return
	}

	totals, err := h.flowService.CounterpartyTotals(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound{}) {
			RespondNotFound(c, "Account not found")
			return
		}
		h.logger.Error("Failed to aggregate flows", "account_id", accountID, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]CounterpartyTotalResponse, 0, len(totals))
	for _, t := range totals {
		responses = append(responses, CounterpartyTotalResponse{
			CounterpartyID: t.CounterpartyID.String(),
			Sent:           t.Sent.String(),
			Received:       t.Received.String(),
			Transfers:      t.Transfers,
		})
	}

	RespondOK(c, responses)
}

func mapFlowToResponse(f *flow.Flow) FlowResponse {
	return FlowResponse{
		TransactionID: f.TransactionID.String(),
		SourceID:      f.SourceID.String(),
		DestinationID: f.DestinationID.String(),
		Amount:        f.Amount.String(),
		Description:   f.Description,
		CompletedAt:   f.CompletedAt.Format(time.RFC3339),
	}
}
