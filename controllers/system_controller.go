package controllers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
)

type SystemController struct {
	audit         *services.AuditService
	notifications *services.NotificationService
	syncer        *services.RoomSynchronizer
	passTimeout   time.Duration
}

func NewSystemController(audit *services.AuditService, notifications *services.NotificationService, syncer *services.RoomSynchronizer, passTimeout time.Duration) *SystemController {
	return &SystemController{audit: audit, notifications: notifications, syncer: syncer, passTimeout: passTimeout}
}

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		return 50
	}
	return n
}

func (sc *SystemController) Audit(c *gin.Context) {
	list, err := sc.audit.Recent(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

func (sc *SystemController) Notifications(c *gin.Context) {
	list, err := sc.notifications.Recent(c.Request.Context(), limitParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}

// RunSync triggers a pass on demand; ?deep=true runs the deep pass.
func (sc *SystemController) RunSync(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), sc.passTimeout)
	defer cancel()

	var report services.SyncReport
	if c.Query("deep") == "true" {
		report = sc.syncer.DeepPass(ctx)
	} else {
		report = sc.syncer.RunPass(ctx)
	}
	utils.JSONSuccess(c, http.StatusOK, report)
}
