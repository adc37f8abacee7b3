package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration

	DeliveryFee      float64
	StoreLatitude    float64
	StoreLongitude   float64
	DeliveryRadiusKm float64

	ExpoPushURL     string
	VapidSubject    string
	VapidPublicKey  string
	VapidPrivateKey string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "chipshop"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),

		DeliveryFee:      getFloatEnv("DELIVERY_FEE", 30.00),
		StoreLatitude:    getFloatEnv("STORE_LATITUDE", 0),
		StoreLongitude:   getFloatEnv("STORE_LONGITUDE", 0),
		DeliveryRadiusKm: getFloatEnv("DELIVERY_RADIUS_KM", 0.5),

		ExpoPushURL:     getEnvOrDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send"),
		VapidSubject:    getEnvOrDefault("VAPID_SUBJECT", "mailto:admin@example.com"),
		VapidPublicKey:  getEnvOrDefault("VAPID_PUBLIC_KEY", ""),
		VapidPrivateKey: getEnvOrDefault("VAPID_PRIVATE_KEY", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
