package controllers

import (
	"net/http"

	"hotel-reservation/middleware"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type DiscountController struct {
	svc *services.DiscountService
}

func NewDiscountController(svc *services.DiscountService) *DiscountController {
	return &DiscountController{svc: svc}
}

func (dc *DiscountController) List(c *gin.Context) {
	list, err := dc.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (dc *DiscountController) Create(c *gin.Context) {
	var in services.DiscountInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	d, err := dc.svc.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, d)
}

func (dc *DiscountController) Deactivate(c *gin.Context) {
	d, err := dc.svc.Deactivate(c.Request.Context(), middleware.ActorFrom(c), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, d)
}
