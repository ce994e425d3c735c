package handler

import (
	"net/http"

	"coderr/internal/domain/model"
	"coderr/internal/middleware"
	"coderr/internal/usecase"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// offer_detail_id以外（statusなど）は受け取らない
type OrderCreateRequest struct {
	OfferDetailID *int64 `json:"offer_detail_id"`
}

type OrderStatusRequest struct {
	Status *string `json:"status"`
}

type orderCountResponse struct {
	OrderCount int64 `json:"order_count"`
}

type completedOrderCountResponse struct {
	CompletedOrderCount int64 `json:"completed_order_count"`
}

func (h *OrderHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	//作成はcustomerだけ
	g.POST("/orders", h.create, middleware.RequireUserType(model.UserTypeCustomer, "Only customer users can create orders."))
	g.PATCH("/orders/:id", h.updateStatus)
	g.DELETE("/orders/:id", h.delete)
	g.GET("/order-count/:business_user_id", h.countInProgress)
	g.GET("/completed-order-count/:business_user_id", h.countCompleted)
}

func (h *OrderHandler) list(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListOrders(c.Request().Context(), caller)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) create(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	out, err := h.uc.CreateOrder(c.Request().Context(), caller, usecase.CreateOrderInput{
		OfferDetailID: req.OfferDetailID,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *OrderHandler) updateStatus(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return bindError(c, err)
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), caller, id, usecase.UpdateOrderStatusInput{Status: req.Status})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *OrderHandler) delete(c echo.Context) error {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}
	id, err := parseID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	if err := h.uc.DeleteOrder(c.Request().Context(), caller, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) countInProgress(c echo.Context) error {
	id, err := parseID(c, "business_user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	n, err := h.uc.CountInProgress(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orderCountResponse{OrderCount: n})
}

func (h *OrderHandler) countCompleted(c echo.Context) error {
	id, err := parseID(c, "business_user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}
	n, err := h.uc.CountCompleted(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, completedOrderCountResponse{CompletedOrderCount: n})
}
