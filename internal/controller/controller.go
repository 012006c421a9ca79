package controller

import (
	"errors"
	"net/http"

	"roadside-assist-service/internal/dto"
	"roadside-assist-service/internal/model"
	"roadside-assist-service/internal/repository"
	"roadside-assist-service/internal/service"

	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders   *service.OrderService
	Tracking *service.TrackingService
}

func NewOrderController(orders *service.OrderService, tracking *service.TrackingService) *OrderController {
	return &OrderController{Orders: orders, Tracking: tracking}
}

// POST /api/orders
func (ctl *OrderController) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := ctl.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrGarageNotFound) {
			fail(c, http.StatusNotFound, "Garage not found")
			return
		}
		serverError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": o})
}

// GET /api/orders?userId=&status=
func (ctl *OrderController) ListOrders(c *gin.Context) {
	f := repository.OrderFilter{
		UserID: c.Query("userId"),
		Status: model.Status(c.Query("status")),
	}
	orders, err := ctl.Orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(orders), "data": orders})
}

// GET /api/orders/:id: snapshot sin avanzar la simulación
func (ctl *OrderController) GetOrder(c *gin.Context) {
	o, err := ctl.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, http.StatusNotFound, "Order not found")
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": o})
}

// GET /api/orders/:id/track: cada poll mueve al mecánico
func (ctl *OrderController) TrackOrder(c *gin.Context) {
	o, err := ctl.Tracking.Track(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			fail(c, http.StatusNotFound, "Order not found")
			return
		}
		serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": o})
}

// PATCH /api/orders/:id/status
func (ctl *OrderController) UpdateStatus(c *gin.Context) {
	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	o, err := ctl.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), model.Status(req.Status), req.Reason)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "data": o})
	case errors.Is(err, repository.ErrNotFound):
		fail(c, http.StatusNotFound, "Order not found")
	case errors.Is(err, service.ErrInvalidTransition), errors.Is(err, service.ErrFinalState):
		fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrConflict):
		fail(c, http.StatusConflict, err.Error())
	default:
		serverError(c, err)
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "message": msg})
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "Server Error")
}
