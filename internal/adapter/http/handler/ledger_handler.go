package handler

import (
	"strconv"

	"cambiototal/internal/adapter/http/dto"
	"cambiototal/internal/adapter/http/middleware"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"
	"cambiototal/pkg/response"

	"github.com/gin-gonic/gin"
)

// LedgerHandler handles fiat and crypto transaction endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// QuoteFiat handles GET /api/v1/fiat/quote?type=&usd_amount=.
func (h *LedgerHandler) QuoteFiat(c *gin.Context) {
	opType := domain.OperationType(c.Query("type"))
	amount, err := strconv.ParseFloat(c.Query("usd_amount"), 64)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	quote, err := h.ledgerSvc.QuoteFiat(c.Request.Context(), opType, amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quote)
}

// SubmitFiat handles POST /api/v1/fiat/transactions.
func (h *LedgerHandler) SubmitFiat(c *gin.Context) {
	var req dto.FiatSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledgerSvc.SubmitFiat(c.Request.Context(), middleware.Username(c),
		domain.OperationType(req.Type), req.AmountUSD)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, txn)
}

// ListFiat handles GET /api/v1/fiat/transactions?limit= (own rows only).
func (h *LedgerHandler) ListFiat(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.ledgerSvc.RecentFiat(c.Request.Context(), middleware.Username(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []domain.FiatTransaction{}
	}
	response.OK(c, rows)
}

// QuoteCrypto handles GET /api/v1/crypto/quote?type=&asset=&crypto_amount=.
func (h *LedgerHandler) QuoteCrypto(c *gin.Context) {
	opType := domain.OperationType(c.Query("type"))
	amount, err := strconv.ParseFloat(c.Query("crypto_amount"), 64)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	quote, err := h.ledgerSvc.QuoteCrypto(c.Request.Context(), opType, c.Query("asset"), amount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quote)
}

// SubmitCrypto handles POST /api/v1/crypto/transactions.
func (h *LedgerHandler) SubmitCrypto(c *gin.Context) {
	var req dto.CryptoSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	txn, err := h.ledgerSvc.SubmitCrypto(c.Request.Context(), middleware.Username(c),
		domain.OperationType(req.Type), req.Asset, req.CryptoAmount)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, txn)
}

// ListCrypto handles GET /api/v1/crypto/transactions?limit= (own rows only).
func (h *LedgerHandler) ListCrypto(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.ledgerSvc.RecentCrypto(c.Request.Context(), middleware.Username(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if rows == nil {
		rows = []domain.CryptoTransaction{}
	}
	response.OK(c, rows)
}
