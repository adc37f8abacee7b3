package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"backend/internal/notify"
)

/* =========================
   MOBILE DEVICE TOKENS
========================= */

type deviceTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform" binding:"required,oneof=ios android"`
}

type deviceTokenDeleteRequest struct {
	Token string `json:"token" binding:"required"`
}

func RegisterDeviceToken(store *notify.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /notifications/device-token"
		defer handlePanic(c, route)

		var req deviceTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := store.UpsertDeviceToken(ctx, req.Token, req.Platform, userID); err != nil {
			log.Println("[PUSH] [ERROR] device token registration failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "device registered for notifications"})
	}
}

func RemoveDeviceToken(store *notify.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /notifications/device-token"
		defer handlePanic(c, route)

		var req deviceTokenDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := store.DeleteDeviceToken(ctx, req.Token); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "device unregistered"})
	}
}

/* =========================
   WEB PUSH SUBSCRIPTIONS
========================= */

type webPushSubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required,url"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

type webPushUnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

func SubscribeWebPush(store *notify.Store, jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /notifications/web-push/subscribe"
		defer handlePanic(c, route)

		var req webPushSubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		userID, err := userIDFromHeader(c.GetHeader("Authorization"), jwtSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := store.UpsertSubscription(ctx, req.Endpoint, req.Keys.P256dh, req.Keys.Auth, userID); err != nil {
			log.Println("[PUSH] [ERROR] web push subscription failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "subscribed to order updates"})
	}
}

func UnsubscribeWebPush(store *notify.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /notifications/web-push/unsubscribe"
		defer handlePanic(c, route)

		var req webPushUnsubscribeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := store.DeleteSubscription(ctx, req.Endpoint); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "unsubscribed"})
	}
}

// GetWebPushPublicKey exposes the VAPID public key so browsers can create
// subscriptions against this server.
func GetWebPushPublicKey(publicKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if publicKey == "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "web push is not configured"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"publicKey": publicKey})
	}
}
