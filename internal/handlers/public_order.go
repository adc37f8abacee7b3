package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/geo"
	"backend/internal/models"
	"backend/internal/orders"
	"backend/internal/pricing"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	SizeID   string   `json:"sizeId" binding:"required"`
	Quantity int      `json:"quantity" binding:"required,min=1,max=10"`
	AddonIDs []string `json:"addonIds"`
}

type createOrderRequest struct {
	CustomerName      string                   `json:"customerName" binding:"required,max=255"`
	CustomerPhone     string                   `json:"customerPhone" binding:"required"`
	OrderType         string                   `json:"orderType" binding:"required"`
	DeliveryAddress   string                   `json:"deliveryAddress" binding:"required,max=500"`
	DeliveryLatitude  *float64                 `json:"deliveryLatitude" binding:"omitempty,min=-90,max=90"`
	DeliveryLongitude *float64                 `json:"deliveryLongitude" binding:"omitempty,min=-180,max=180"`
	PaymentMethod     string                   `json:"paymentMethod"`
	Notes             string                   `json:"notes" binding:"max=500"`
	Items             []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note" binding:"max=500"`
}

var phonePattern = regexp.MustCompile(`^(\+27|0)[6-8][0-9]{8}$`)

// StoreLocation is the configured store point and delivery radius used by
// the order intake distance check.
type StoreLocation struct {
	Latitude  float64
	Longitude float64
	RadiusKm  float64
}

// outsideRadius reports whether the delivery point is beyond the store's
// configured radius, and how far away it is. A store without configured
// coordinates never rejects.
func (l StoreLocation) outsideRadius(lat, lon float64) (float64, bool) {
	if l.Latitude == 0 && l.Longitude == 0 {
		return 0, false
	}
	distance := geo.DistanceKm(l.Latitude, l.Longitude, lat, lon)
	return distance, distance > l.RadiusKm
}

/* =========================
   CREATE ORDER
========================= */

func CreateOrder(db *mongo.Database, service *orders.Service, jwtSecret string, store StoreLocation) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		if !phonePattern.MatchString(strings.TrimSpace(req.CustomerPhone)) {
			respondWithError(c, http.StatusBadRequest, route, "please enter a valid South African phone number")
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			log.Println("[ORDER] [ERROR] token validation failed:", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		input, err := buildOrderInput(req)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}
		input.UserID = userID

		if input.OrderType == models.OrderTypeDelivery &&
			input.DeliveryLatitude != nil && input.DeliveryLongitude != nil {
			if distance, outside := store.outsideRadius(*input.DeliveryLatitude, *input.DeliveryLongitude); outside {
				respondWithError(c, http.StatusBadRequest, route, fmt.Sprintf(
					"sorry, we only deliver within %.1fkm of our store. Your location is %.2fkm away. Please choose collection instead.",
					store.RadiusKm, distance))
				return
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()

		order, err := service.CreateOrder(ctx, input)
		if err != nil {
			var unavailable pricing.ProductUnavailableError
			switch {
			case errors.As(err, &unavailable):
				c.JSON(http.StatusBadRequest, gin.H{"error": unavailable.Error()})
			case errors.Is(err, pricing.ErrSizeNotFound):
				c.JSON(http.StatusBadRequest, gin.H{"error": "one of the selected products no longer exists"})
			case errors.As(err, &orders.ValidationError{}):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, orders.ErrOrderNumberExhausted):
				log.Println("[ORDER] [ERROR] order number space exhausted")
				respondWithError(c, http.StatusInternalServerError, route, "could not allocate an order number")
			default:
				respondWithError(c, http.StatusInternalServerError, route, "db error")
			}
			return
		}

		if userID != nil {
			log.Println("[ORDER] [INFO] order created for user:", userID.Hex())
		} else {
			log.Println("[ORDER] [INFO] guest order created")
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "order placed successfully",
			"order":   order,
		})
	}
}

func buildOrderInput(req createOrderRequest) (orders.CreateOrderInput, error) {
	orderType := models.OrderType(req.OrderType)
	if !orderType.Valid() {
		return orders.CreateOrderInput{}, errors.New("order type must be either delivery or collection")
	}

	paymentMethod := models.PaymentMethod(req.PaymentMethod)
	if req.PaymentMethod == "" {
		paymentMethod = models.PaymentCash
	}
	if !paymentMethod.Valid() {
		return orders.CreateOrderInput{}, errors.New("invalid payment method")
	}

	lines := make([]orders.CartLine, 0, len(req.Items))
	for _, item := range req.Items {
		sizeID, err := primitive.ObjectIDFromHex(item.SizeID)
		if err != nil {
			return orders.CreateOrderInput{}, errors.New("invalid sizeId")
		}

		addonIDs := make([]primitive.ObjectID, 0, len(item.AddonIDs))
		for _, raw := range item.AddonIDs {
			addonID, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return orders.CreateOrderInput{}, errors.New("invalid addonId")
			}
			addonIDs = append(addonIDs, addonID)
		}

		lines = append(lines, orders.CartLine{
			SizeID:   sizeID,
			Quantity: item.Quantity,
			AddonIDs: addonIDs,
		})
	}

	return orders.CreateOrderInput{
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		OrderType:         orderType,
		DeliveryAddress:   strings.TrimSpace(req.DeliveryAddress),
		DeliveryLatitude:  req.DeliveryLatitude,
		DeliveryLongitude: req.DeliveryLongitude,
		PaymentMethod:     paymentMethod,
		Notes:             strings.TrimSpace(req.Notes),
		Items:             lines,
	}, nil
}

/* =========================
   TRACK / LIST ORDERS
========================= */

func GetOrder(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := service.OrderByNumber(ctx, c.Param("number"))
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

func GetUserOrders(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.MustGet("userId").(primitive.ObjectID)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		page, _ := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
		perPage, _ := strconv.ParseInt(c.DefaultQuery("perPage", "10"), 10, 64)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		results, total, err := service.OrdersByUser(ctx, userID, page, perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "orders could not be fetched"})
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

/* =========================
   STATUS UPDATE (table-enforced)
========================= */

// UpdateOrderStatus is the customer/driver-facing transition path: the
// status machine is always consulted and illegal moves are rejected with
// no writes.
func UpdateOrderStatus(service *orders.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:number/status"
		defer handlePanic(c, route)

		var req updateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		order, err := service.UpdateStatus(ctx, c.Param("number"), models.OrderStatus(req.Status), req.Note)
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

func respondTransitionError(c *gin.Context, route string, err error) {
	var invalid orders.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": invalid.Error()})
	case errors.As(err, &orders.ValidationError{}):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, orders.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	default:
		respondWithError(c, http.StatusInternalServerError, route, "db error")
	}
}
