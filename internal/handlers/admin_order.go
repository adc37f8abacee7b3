package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/orders"
)

/* =========================
   ADMIN ORDER LIST
========================= */

func AdminGetOrders(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders"
		defer handlePanic(c, route)

		page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
		perPage, _ := strconv.ParseInt(c.DefaultQuery("perPage", "20"), 10, 64)

		filter := orders.AdminListFilter{
			Status:  models.OrderStatus(c.Query("status")),
			Search:  c.Query("search"),
			Page:    page,
			PerPage: perPage,
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		results, total, err := service.AdminList(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": results,
			"meta": gin.H{
				"page":    page,
				"perPage": perPage,
				"total":   total,
			},
		})
	}
}

// AdminGetActiveOrders returns today's orders that still need attention on
// the kitchen dashboard.
func AdminGetActiveOrders(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/orders/active"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		results, err := service.ActiveOrders(ctx)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "orders could not be fetched")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": results})
	}
}

/* =========================
   ADMIN STATUS OVERRIDE
========================= */

// AdminUpdateOrderStatus moves an order to any valid status. Moves outside
// the normal flow are recorded as forced in the order's history.
func AdminUpdateOrderStatus(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /admin/orders/:number/status"
		defer handlePanic(c, route)

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := service.ForceUpdateStatus(ctx, c.Param("number"), models.OrderStatus(req.Status), req.Note)
		if err != nil {
			respondTransitionError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "order status updated",
			"order":   order,
		})
	}
}
