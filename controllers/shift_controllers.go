package controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/kds"
	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type ShiftController struct {
	Shifts *services.ShiftService
}

func NewShiftController(shifts *services.ShiftService) *ShiftController {
	return &ShiftController{Shifts: shifts}
}

// OpenShift -> buka laci kas; gagal (409) jika user masih punya shift terbuka
func (sc *ShiftController) OpenShift(c *gin.Context) {
	var body struct {
		StartAmount decimal.Decimal `json:"start_amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift, err := sc.Shifts.Open(c.Request.Context(), actorFrom(c), body.StartAmount)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	kds.BroadcastStaffNotification(fmt.Sprintf("Shift %d opened", shift.ID))
	utils.RespondJSON(c, http.StatusCreated, "Shift opened", shift)
}

// CloseShift -> mutasi terakhir pada shift; shift tertutup tidak bisa diubah lagi
func (sc *ShiftController) CloseShift(c *gin.Context) {
	var body struct {
		ShiftID   uint            `json:"shift_id" binding:"required"`
		EndAmount decimal.Decimal `json:"end_amount"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	shift, err := sc.Shifts.Close(c.Request.Context(), actorFrom(c), body.ShiftID, body.EndAmount)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	kds.BroadcastStaffNotification(fmt.Sprintf("Shift %d closed", shift.ID))
	utils.RespondJSON(c, http.StatusOK, "Shift closed", shift)
}
