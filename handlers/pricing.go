package handlers

import (
	"net/http"

	"maisonette/models"
	"maisonette/services/pricing"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PricingHandler serves unit quotes and the global pricing settings.
type PricingHandler struct {
	Periods        pricing.Strategy
	SettingsQuotes pricing.Strategy
	Settings       *pricing.SettingsService
	Logger         *zap.Logger
}

func NewPricingHandler(periods, settingsQuotes pricing.Strategy, settings *pricing.SettingsService, logger *zap.Logger) *PricingHandler {
	return &PricingHandler{Periods: periods, SettingsQuotes: settingsQuotes, Settings: settings, Logger: logger}
}

// UnitQuote handles GET /api/units/:unitID/price?start=&end=&guests=.
func (h *PricingHandler) UnitQuote(c *gin.Context) {
	guests, ok := queryInt(c, "guests", 2)
	if !ok {
		return
	}
	r, err := models.NewDateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid dates", err.Error())
		return
	}
	quote, err := h.Periods.Quote(c.Request.Context(), pricing.QuoteRequest{UnitID: c.Param("unitID"), Range: r, PartySize: guests})
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *PricingHandler) GetSettings(c *gin.Context) {
	s, err := h.Settings.Get(c.Request.Context())
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *PricingHandler) UpdateSettings(c *gin.Context) {
	var upd models.PricingSettingsUpdate
	if !bindJSON(c, &upd) {
		return
	}
	s, err := h.Settings.Update(c.Request.Context(), upd)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

// Calculate handles POST /api/admin/pricing/calculate with the settings
// based calculator.
func (h *PricingHandler) Calculate(c *gin.Context) {
	var input struct {
		Start  string `json:"start" binding:"required"`
		End    string `json:"end" binding:"required"`
		Guests int    `json:"guests"`
	}
	if !bindJSON(c, &input) {
		return
	}
	if input.Guests < 1 {
		input.Guests = 2
	}
	r, err := models.NewDateRange(input.Start, input.End)
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid dates", err.Error())
		return
	}
	quote, err := h.SettingsQuotes.Quote(c.Request.Context(), pricing.QuoteRequest{Range: r, PartySize: input.Guests})
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
