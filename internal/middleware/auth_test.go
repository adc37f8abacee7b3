package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return token
}

func guardedRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.PATCH("/orders/:number/status", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestUserAuthRejectsAnonymousStatusUpdate(t *testing.T) {
	router := guardedRouter(UserAuth(testSecret))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/orders/123456/status", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", w.Code)
	}
}

func TestUserAuthRejectsForgedToken(t *testing.T) {
	router := guardedRouter(UserAuth(testSecret))

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
	}).SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/orders/123456/status", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a forged token, got %d", w.Code)
	}
}

func TestUserAuthInjectsUserID(t *testing.T) {
	userID := primitive.NewObjectID()
	token := signToken(t, jwt.MapClaims{
		"userId": userID.Hex(),
		"exp":    time.Now().Add(time.Minute).Unix(),
	})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	var got primitive.ObjectID
	router.PATCH("/orders/:number/status", UserAuth(testSecret), func(c *gin.Context) {
		got = c.MustGet("userId").(primitive.ObjectID)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/orders/123456/status", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with a valid token, got %d", w.Code)
	}
	if got != userID {
		t.Fatalf("expected userId %s in context, got %s", userID.Hex(), got.Hex())
	}
}

func TestAdminAuthRequiresAdminRole(t *testing.T) {
	router := guardedRouter(AdminAuth(testSecret))

	customer := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "customer",
		"exp":    time.Now().Add(time.Minute).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/orders/123456/status", nil)
	req.Header.Set("Authorization", "Bearer "+customer)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a non-admin token, got %d", w.Code)
	}

	admin := signToken(t, jwt.MapClaims{
		"userId": primitive.NewObjectID().Hex(),
		"role":   "admin",
		"exp":    time.Now().Add(time.Minute).Unix(),
	})

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/orders/123456/status", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for an admin token, got %d", w.Code)
	}
}
