package controllers

import (
	"net/http"

	"hotel-reservation/middleware"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

type CatalogController struct {
	svc *services.CatalogService
}

func NewCatalogController(svc *services.CatalogService) *CatalogController {
	return &CatalogController{svc: svc}
}

// List shows active services; ?all=true includes inactive ones.
func (cc *CatalogController) List(c *gin.Context) {
	list, err := cc.svc.List(c.Request.Context(), c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (cc *CatalogController) Create(c *gin.Context) {
	var in services.ExtraServiceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := cc.svc.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, svc)
}

func (cc *CatalogController) SetActive(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	svc, err := cc.svc.SetActive(c.Request.Context(), middleware.ActorFrom(c), id, *req.Active)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, svc)
}
