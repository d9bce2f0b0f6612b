package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/otel"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"opacweb-server/cache"
	"opacweb-server/config"
	_ "opacweb-server/docs"
	"opacweb-server/handlers"
	"opacweb-server/logger"
	"opacweb-server/services"
)

// @title Opacweb API
// @version 1.0
// @description Storefront backend for the Opacweb collective: catalog, cart and content endpoints plus webhook receivers.
// @BasePath /
func main() {
	// Load configuration
	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger.Init(config.IsProduction())
	defer logger.Log.Sync()

	// Tracing: spans around outbound commerce calls land on stdout.
	exp, _ := stdouttrace.New(stdouttrace.WithPrettyPrint())
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	defer tp.Shutdown(context.Background())

	// Tag cache: redis in deployment, in-memory fallback for local runs
	// without a redis instance.
	var store cache.Store
	redisStore, err := cache.Connect(config.AppConfig.RedisAddr)
	if err != nil {
		logger.Log.Warn("redis unavailable, using in-memory cache", zap.Error(err))
		store = cache.NewMemoryStore()
	} else {
		store = redisStore
	}

	shopify := services.NewShopifyClient(
		config.AppConfig.ShopifyStoreDomain,
		config.AppConfig.ShopifyAccessToken,
		config.AppConfig.ShopifyAPIVersion,
	)
	sanity := services.NewSanityClient(
		config.AppConfig.SanityProjectID,
		config.AppConfig.SanityDataset,
		config.AppConfig.SanityAPIVersion,
	)
	handlers.InitializeHandlers(shopify, sanity, store)

	// Set Gin mode
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(handlers.RequestIDMiddleware())

	// CORS for the browser storefront
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	// Health check endpoint
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Opacweb server is running",
			"time":    time.Now().Unix(),
		})
	})

	api := router.Group("/api")
	{
		// Shop routes, gated behind the feature flag
		shop := api.Group("")
		shop.Use(handlers.ShopEnabledMiddleware())
		{
			shop.GET("/cart", handlers.GetCart)
			shop.POST("/cart", handlers.AddToCart)
			shop.PUT("/cart", handlers.UpdateCart)
			shop.DELETE("/cart", handlers.RemoveFromCart)
			shop.DELETE("/cart/session", handlers.ClearCartSession)

			shop.GET("/products", handlers.GetProducts)
			shop.GET("/products/:handle", handlers.GetProductByHandle)
		}

		// CMS content
		api.GET("/content/:type", handlers.GetContent)

		// Webhook receivers
		api.POST("/shopify-webhook", handlers.ShopifyWebhook)
		api.GET("/shopify-webhook", handlers.ShopifyWebhookHealth)
		api.POST("/sanity-webhook", handlers.SanityWebhook)

		// Manual invalidation
		api.POST("/revalidate", handlers.Revalidate)
		api.GET("/debug-cache", handlers.DebugCache)
	}

	router.GET("/swagger/*any", gin.WrapH(httpSwagger.WrapHandler))

	// Start server
	log.Printf("Starting Opacweb server on 0.0.0.0:%s", config.AppConfig.ServerPort)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+config.AppConfig.ServerPort, c.Handler(router)))
}
