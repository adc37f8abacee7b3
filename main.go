package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"backend/internal/config"
	"backend/internal/database"
	"backend/internal/events"
	"backend/internal/handlers"
	"backend/internal/middleware"
	"backend/internal/notify"
	"backend/internal/orders"
	"backend/internal/pricing"
	"backend/internal/realtime"
)

func main() {
	generateVapidKeys := flag.Bool("generate-vapid-keys", false, "print a fresh VAPID key pair and exit")
	flag.Parse()

	if *generateVapidKeys {
		privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("VAPID_PUBLIC_KEY=" + publicKey)
		fmt.Println("VAPID_PRIVATE_KEY=" + privateKey)
		return
	}

	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureRecipientIndexes(db); err != nil {
		log.Printf("recipient index warning: %v", err)
	}

	bus := events.NewBus()

	store := notify.NewStore(db)
	router := notify.NewRouter(
		store,
		notify.NewExpoDispatcher(config.AppEnv.ExpoPushURL, store),
		notify.NewWebPushDispatcher(notify.VapidConfig{
			Subject:    config.AppEnv.VapidSubject,
			PublicKey:  config.AppEnv.VapidPublicKey,
			PrivateKey: config.AppEnv.VapidPrivateKey,
		}, store),
	)

	hub := realtime.NewHub()
	adminFeed := realtime.NewAdminPublisher(hub)

	bus.SubscribeOrderCreated(adminFeed.HandleOrderCreated)
	bus.SubscribeOrderStatusChanged(router.HandleOrderStatusChanged)

	engine := pricing.NewEngine(pricing.NewMongoCatalog(db))
	orderService := orders.NewService(db, engine, bus, config.AppEnv.DeliveryFee)

	storeLocation := handlers.StoreLocation{
		Latitude:  config.AppEnv.StoreLatitude,
		Longitude: config.AppEnv.StoreLongitude,
		RadiusKm:  config.AppEnv.DeliveryRadiusKm,
	}

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
	}))

	r.POST("/auth/register", handlers.Register(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.POST("/auth/login", handlers.Login(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))
	r.GET("/auth/me", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.Me(db))

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/addons", handlers.GetAddons(db))

	r.POST("/orders", handlers.CreateOrder(db, orderService, config.AppEnv.JWTSecret, storeLocation))
	r.GET("/orders/:number", handlers.GetOrder(orderService))
	r.PATCH("/orders/:number/status", middleware.UserAuth(config.AppEnv.JWTSecret), handlers.UpdateOrderStatus(orderService))

	r.POST("/notifications/device-token", handlers.RegisterDeviceToken(store, config.AppEnv.JWTSecret))
	r.DELETE("/notifications/device-token", handlers.RemoveDeviceToken(store))
	r.POST("/notifications/web-push/subscribe", handlers.SubscribeWebPush(store, config.AppEnv.JWTSecret))
	r.POST("/notifications/web-push/unsubscribe", handlers.UnsubscribeWebPush(store))
	r.GET("/notifications/web-push/public-key", handlers.GetWebPushPublicKey(config.AppEnv.VapidPublicKey))

	user := r.Group("/user")
	user.Use(middleware.UserAuth(config.AppEnv.JWTSecret))
	{
		user.GET("/orders", handlers.GetUserOrders(orderService))
	}

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/orders", handlers.AdminGetOrders(orderService))
		admin.GET("/orders/active", handlers.AdminGetActiveOrders(orderService))
		admin.PATCH("/orders/:number/status", handlers.AdminUpdateOrderStatus(orderService))
		admin.GET("/ws", realtime.ServeWS(hub))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
