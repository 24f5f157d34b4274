package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/queueease/services"
	"github.com/yeremiapane/queueease/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// PlaceOrder -> customer memesan menu untuk antrian yang sudah dapat meja
func (oc *OrderController) PlaceOrder(c *gin.Context) {
	var req services.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	order, err := oc.Orders.PlaceOrder(c.Request.Context(), customerPhone(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order placed successfully", order)
}

// GetMyOrders -> riwayat order customer yang login
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	orders, err := oc.Orders.ListCustomerOrders(c.Request.Context(), customerPhone(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

// GetRestaurantOrders -> order masuk untuk dapur/kasir, ?status=
func (oc *OrderController) GetRestaurantOrders(c *gin.Context) {
	page := utils.ParsePagination(c)
	orders, total, err := oc.Orders.ListRestaurantOrders(c.Request.Context(), restaurantID(c), c.Query("status"), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", page.Result(orders, total))
}

// UpdateOrderStatus -> PENDING, PREPARING, SERVED, DELIVERED, CANCELLED
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.InvalidInput(err))
		return
	}

	order, err := oc.Orders.UpdateOrderStatus(c.Request.Context(), restaurantID(c), id, req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}
