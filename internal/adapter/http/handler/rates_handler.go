package handler

import (
	"strings"

	"cambiototal/internal/adapter/http/dto"
	"cambiototal/internal/core/domain"
	"cambiototal/internal/core/ports"
	"cambiototal/pkg/apperror"
	"cambiototal/pkg/response"

	"github.com/gin-gonic/gin"
)

// RatesHandler exposes the market-rate read and refresh endpoints.
type RatesHandler struct {
	rates ports.RateProvider
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(rates ports.RateProvider) *RatesHandler {
	return &RatesHandler{rates: rates}
}

// FiatRate handles GET /api/v1/rates/fiat.
func (h *RatesHandler) FiatRate(c *gin.Context) {
	rate, err := h.rates.FiatRate(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, rate)
}

// CryptoPrices handles GET /api/v1/rates/crypto?assets=bitcoin,ethereum.
// Without the assets parameter every supported asset is quoted.
func (h *RatesHandler) CryptoPrices(c *gin.Context) {
	var assetIDs []string
	if raw := c.Query("assets"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			id = strings.TrimSpace(id)
			if id == "" {
				continue
			}
			if !domain.IsSupportedAsset(id) {
				response.Error(c, apperror.ErrUnknownAsset(id))
				return
			}
			assetIDs = append(assetIDs, id)
		}
	}
	if len(assetIDs) == 0 {
		assetIDs = domain.SupportedAssetIDs()
	}

	prices, err := h.rates.CryptoPrices(c.Request.Context(), assetIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.CryptoPricesResponse{Prices: prices})
}

// Refresh handles POST /api/v1/rates/refresh.
func (h *RatesHandler) Refresh(c *gin.Context) {
	if err := h.rates.Refresh(c.Request.Context()); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}
	response.OK(c, gin.H{"refreshed": true})
}
