package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

// TableController only covers reads and admin creation; occupancy itself is
// owned by the order service and always changes inside its transactions.
type TableController struct {
	DB *gorm.DB
}

func NewTableController(db *gorm.DB) *TableController {
	return &TableController{DB: db}
}

// GetTables -> daftar meja beserta status dan order aktifnya
func (tc *TableController) GetTables(c *gin.Context) {
	var tables []models.Table
	if err := tc.DB.Where("tenant_id = ?", actorFrom(c).TenantID).
		Order("table_number").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// CreateTable -> menambahkan meja baru (admin)
func (tc *TableController) CreateTable(c *gin.Context) {
	actor := actorFrom(c)
	if actor.Role != "admin" {
		utils.RespondError(c, http.StatusForbidden, ErrNoPermission)
		return
	}

	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	table := models.Table{
		TenantID:    actor.TenantID,
		TableNumber: req.TableNumber,
		Status:      models.TableStatusFree,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}
