package app

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mytheresa/go-storefront/app/cart"
	"github.com/mytheresa/go-storefront/app/catalog"
	"github.com/mytheresa/go-storefront/app/categories"
	"github.com/mytheresa/go-storefront/app/newsletter"
	cartstore "github.com/mytheresa/go-storefront/cart"
	subscriptions "github.com/mytheresa/go-storefront/newsletter"
	"github.com/mytheresa/go-storefront/variants"
)

// Dependencies is everything the HTTP surface needs.
type Dependencies struct {
	Products     catalog.ProductProvider
	Categories   categories.CategoryProvider
	Carts        *cartstore.Registry
	Subscribers  subscriptions.Subscriber
	Settings     variants.Settings
	AllowOrigins []string
	Logger       *zap.Logger
}

func NewRouter(deps Dependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", cart.CartIDHeader},
		ExposeHeaders: []string{"Content-Length", cart.CartIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	catalogHandler := catalog.NewCatalogHandler(deps.Products, deps.Settings, logger)
	r.GET("/catalog", catalogHandler.HandleGet)
	r.GET("/catalog/:code", catalogHandler.HandleGetProduct)
	r.POST("/catalog/:code/selection", catalogHandler.HandleSelection)

	categoryHandler := categories.NewCategoryHandler(deps.Categories, logger)
	r.GET("/categories", categoryHandler.HandleGetAll)
	r.POST("/categories", categoryHandler.HandleCreate)

	cartHandler := cart.NewCartHandler(deps.Products, deps.Carts, deps.Settings, logger)
	carts := r.Group("/cart")
	{
		carts.GET("", cartHandler.HandleGet)
		carts.DELETE("", cartHandler.HandleClear)
		carts.POST("/open", cartHandler.HandleOpen)
		carts.POST("/items", cartHandler.HandleAdd)
		carts.PATCH("/items", cartHandler.HandleUpdate)
		carts.DELETE("/items", cartHandler.HandleRemove)
	}

	newsletterHandler := newsletter.NewNewsletterHandler(deps.Subscribers, logger)
	r.POST("/newsletter", newsletterHandler.HandleSubscribe)

	return r
}

// RequestLogger logs one line per request.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}
