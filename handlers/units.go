package handlers

import (
	"net/http"

	"maisonette/models"
	"maisonette/services/unit"
	"maisonette/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UnitHandler serves units, their pricing config, rate periods,
// discounts and manual blocks.
type UnitHandler struct {
	Service unit.UnitService
	Logger  *zap.Logger
}

func NewUnitHandler(service unit.UnitService, logger *zap.Logger) *UnitHandler {
	return &UnitHandler{Service: service, Logger: logger}
}

// List handles GET /api/units (active units only).
func (h *UnitHandler) List(c *gin.Context) {
	h.list(c, true)
}

// AdminList handles GET /api/admin/units.
func (h *UnitHandler) AdminList(c *gin.Context) {
	h.list(c, false)
}

func (h *UnitHandler) list(c *gin.Context, activeOnly bool) {
	units, err := h.Service.ListUnits(c.Request.Context(), activeOnly)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, units)
}

// Get handles GET /api/units/:unitID. Inactive units are hidden.
func (h *UnitHandler) Get(c *gin.Context) {
	u, err := h.Service.GetUnit(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	if !u.Active {
		utils.JSONError(c, http.StatusNotFound, "unit not found", "")
		return
	}
	c.JSON(http.StatusOK, u)
}

// Calendar handles GET /api/units/:unitID/availability.
func (h *UnitHandler) Calendar(c *gin.Context) {
	cal, err := h.Service.Calendar(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (h *UnitHandler) Create(c *gin.Context) {
	var in models.UnitInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Service.CreateUnit(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, u)
}

func (h *UnitHandler) Update(c *gin.Context) {
	var in models.UnitInput
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.Service.UpdateUnit(c.Request.Context(), c.Param("unitID"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UnitHandler) Delete(c *gin.Context) {
	if err := h.Service.DeleteUnit(c.Request.Context(), c.Param("unitID")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "unit deleted"})
}

func (h *UnitHandler) GetPricing(c *gin.Context) {
	p, err := h.Service.GetPricing(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UnitHandler) UpdatePricing(c *gin.Context) {
	var upd models.UnitPricingUpdate
	if !bindJSON(c, &upd) {
		return
	}
	p, err := h.Service.UpdatePricing(c.Request.Context(), c.Param("unitID"), upd)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UnitHandler) ListPeriods(c *gin.Context) {
	periods, err := h.Service.ListPeriods(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, periods)
}

func (h *UnitHandler) CreatePeriod(c *gin.Context) {
	var in models.RatePeriodInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Service.CreatePeriod(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *UnitHandler) UpdatePeriod(c *gin.Context) {
	var in models.RatePeriodInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.Service.UpdatePeriod(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *UnitHandler) DeletePeriod(c *gin.Context) {
	if err := h.Service.DeletePeriod(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "rate period deleted"})
}

func (h *UnitHandler) ListDiscounts(c *gin.Context) {
	discounts, err := h.Service.ListDiscounts(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, discounts)
}

func (h *UnitHandler) CreateDiscount(c *gin.Context) {
	var in models.DiscountInput
	if !bindJSON(c, &in) {
		return
	}
	d, err := h.Service.CreateDiscount(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *UnitHandler) DeleteDiscount(c *gin.Context) {
	if err := h.Service.DeleteDiscount(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "discount deleted"})
}

func (h *UnitHandler) ListBlocks(c *gin.Context) {
	blocks, err := h.Service.ListBlocks(c.Request.Context(), c.Param("unitID"))
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, blocks)
}

func (h *UnitHandler) CreateBlock(c *gin.Context) {
	var in models.BlockInput
	if !bindJSON(c, &in) {
		return
	}
	b, err := h.Service.CreateBlock(c.Request.Context(), in)
	if err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *UnitHandler) DeleteBlock(c *gin.Context) {
	if err := h.Service.DeleteBlock(c.Request.Context(), c.Param("id")); err != nil {
		utils.RespondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "block deleted"})
}
