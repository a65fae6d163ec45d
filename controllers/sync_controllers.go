package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type SyncController struct {
	Sync *services.SyncService
}

func NewSyncController(sync *services.SyncService) *SyncController {
	return &SyncController{Sync: sync}
}

// Pull -> snapshot katalog untuk terminal yang mau kerja offline
func (sc *SyncController) Pull(c *gin.Context) {
	resp, err := sc.Sync.Pull(c.Request.Context(), actorFrom(c).TenantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Catalog snapshot", resp)
}

// Push -> replay antrian order/payment offline; partial failure, bukan all-or-nothing
func (sc *SyncController) Push(c *gin.Context) {
	var req services.PushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := sc.Sync.Push(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Sync processed", resp)
}
