package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	pricingapp "github.com/mangodeliveries/backend/internal/application/pricing"
	"github.com/mangodeliveries/backend/internal/domain/identity"
	"github.com/mangodeliveries/backend/internal/domain/pricing"
	"github.com/mangodeliveries/backend/internal/interfaces/http/middleware"
)

// PriceQuoter exposes the two pricing strategies
type PriceQuoter interface {
	Appraise(ctx context.Context, actor *identity.Character, code string, multiplier int) (*pricingapp.Preview, error)
	RouteQuote(ctx context.Context, req pricing.RouteRequest) pricing.RouteQuote
}

// PricingHandler serves the appraisal preview and the instant route quote
type PricingHandler struct {
	BaseHandler
	quoter PriceQuoter
}

// NewPricingHandler creates a PricingHandler
func NewPricingHandler(quoter PriceQuoter) *PricingHandler {
	return &PricingHandler{quoter: quoter}
}

// RegisterRoutes registers the pricing routes
func (h *PricingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/query", h.Query)
	rg.POST("/quote", h.Quote)
}

// Query previews the price of an appraisal for the logged-in member
func (h *PricingHandler) Query(c *gin.Context) {
	multiplier := 1
	if raw := c.Query("multiplier"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			multiplier = parsed
		}
	}

	preview, err := h.quoter.Appraise(c.Request.Context(), middleware.CharacterFrom(c), c.Query("appraisal"), multiplier)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"jita":       preview.Jita,
		"jitaShort":  preview.JitaShort,
		"quote":      preview.Quote,
		"quoteShort": preview.QuoteShort,
	})
}

// routeQuoteRequest is the instant-quote calculator input
type routeQuoteRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Volume      float64 `json:"volume"`
	Collateral  string  `json:"collateral"`
	RouteType   string  `json:"routeType"`
}

// Quote calculates an instant route quote. The calculator never errors
// outward; bad input comes back as {valid:false}.
func (h *PricingHandler) Quote(c *gin.Context) {
	var req routeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, pricing.RouteQuote{Valid: false, Error: "Invalid request"})
		return
	}

	collateral := decimal.Zero
	if req.Collateral != "" {
		if parsed, err := decimal.NewFromString(req.Collateral); err == nil {
			collateral = parsed
		}
	}

	quote := h.quoter.RouteQuote(c.Request.Context(), pricing.RouteRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Volume:      req.Volume,
		Collateral:  collateral,
		RouteType:   pricing.RouteType(req.RouteType),
	})
	c.JSON(http.StatusOK, quote)
}
