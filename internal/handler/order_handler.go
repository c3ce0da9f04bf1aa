package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/printshop/printshop-api/internal/service"
	"github.com/printshop/printshop-api/internal/utils"
)

// OrderHandler serves checkout and the spreadsheet download.
type OrderHandler struct {
	orders   *service.OrderService
	exporter service.Exporter
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderService, exporter service.Exporter) *OrderHandler {
	return &OrderHandler{orders: orders, exporter: exporter}
}

// Checkout handles POST /api/orders/checkout.
func (h *OrderHandler) Checkout(c *gin.Context) {
	var req service.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	orderID, err := h.orders.Checkout(c.Request.Context(), &req)
	if err != nil {
		switch {
		case utils.IsValidation(err):
			utils.Error(c, http.StatusBadRequest, "Missing required fields")
		case utils.IsNotFound(err):
			utils.Error(c, http.StatusNotFound, err.Error())
		default:
			utils.Error(c, http.StatusInternalServerError, err.Error())
		}
		return
	}

	utils.JSON(c, http.StatusCreated, gin.H{
		"order_id": orderID,
		"message":  "Order created successfully",
	})
}

// DownloadExcel handles GET /api/orders/excel/latest. An empty templated
// workbook is generated on the fly when none exists yet.
func (h *OrderHandler) DownloadExcel(c *gin.Context) {
	path, err := h.exporter.FilePath()
	if err != nil {
		utils.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.FileAttachment(path, "orders.xlsx")
}
