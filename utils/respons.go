package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError memetakan error taxonomy ke kode HTTP (lihat errors.go).
// Pesan internal error disembunyikan di mode release.
func RespondAppError(c *gin.Context, err error) {
	code := HTTPStatus(err)
	if code == http.StatusInternalServerError {
		ErrorLogger.Printf("internal error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if gin.Mode() == gin.ReleaseMode {
			c.JSON(code, JSONResponse{Status: false, Message: "internal server error"})
			return
		}
	}
	RespondError(c, code, err)
}

// FormatMoney formats a decimal amount with two places for receipts and logs.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
