package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/yeremiapane/restaurant-pos/services"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> buka order baru (status open, atau confirmed jika langsung lunas)
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var input services.CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	// Offline timestamps masuk lewat sync push, bukan endpoint ini
	input.CreatedAt = nil

	order, err := oc.Orders.Create(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// AddItems -> tambah item ke order yang belum lunas
func (oc *OrderController) AddItems(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Items []services.OrderItemInput `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.AddItems(c.Request.Context(), actorFrom(c), orderID, body.Items)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Items added", order)
}

// UpdateStatus -> jalankan satu transisi lifecycle
func (oc *OrderController) UpdateStatus(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.ChangeStatus(c.Request.Context(), actorFrom(c), orderID, body.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// AddPayment -> pembayaran tambahan terhadap order yang belum lunas
func (oc *OrderController) AddPayment(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var body struct {
		Method string          `json:"method" binding:"required"`
		Amount decimal.Decimal `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	payment, _, err := oc.Orders.AddPayment(c.Request.Context(), actorFrom(c), orderID, body.Method, body.Amount, false)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

// GetOrderByID -> detail 1 order beserta items dan payments
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.Get(actorFrom(c).TenantID, orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// GetOrders -> list order untuk satu business date (default: hari ini)
func (oc *OrderController) GetOrders(c *gin.Context) {
	businessDate := utils.BusinessDate(time.Now())
	if raw := c.Query("business_date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
		businessDate = parsed
	}

	orders, err := oc.Orders.List(actorFrom(c).TenantID, businessDate)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
