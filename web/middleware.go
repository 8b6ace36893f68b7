package web

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	dbt "settlex/db/db"
)

func CorsConfig() cors.Config {
	corsConf := cors.DefaultConfig()
	corsConf.AllowAllOrigins = true
	corsConf.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConf.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"}
	corsConf.AllowCredentials = true
	corsConf.MaxAge = 1 * 3600 // 1 hour
	return corsConf
}

func limiterMiddleWare() gin.HandlerFunc {
	rate := limiter.Rate{
		Period: 1 * time.Hour,
		Limit:  1000, // 1000 requests per hour
	}
	store := memory.NewStore()
	instance := limiter.New(store, rate)
	middleware := mgin.NewMiddleware(instance)

	return middleware
}

// SettlementDataLoaderInjectionMiddleware gives each request its own batch
// loader so fan-out reads within one request are coalesced, without cache
// bleed between requests.
func SettlementDataLoaderInjectionMiddleware(expenses dbt.ExpenseDBWrapper, trips dbt.TripDBWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		loader := dbt.NewSettlementDataLoader(expenses, trips)
		c.Set(string(dbt.DataLoaderKeySettlement), loader)
		ctx := context.WithValue(c.Request.Context(), dbt.DataLoaderKeySettlement, loader)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func setupMiddlewares(r *gin.Engine, expenses dbt.ExpenseDBWrapper, trips dbt.TripDBWrapper) {
	r.Use(limiterMiddleWare())
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(cors.New(CorsConfig()))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(secure.New(secure.Config{
		STSSeconds:           31536000, // 1 year
		STSIncludeSubdomains: true,
		FrameDeny:            true,
		ContentTypeNosniff:   true,
		BrowserXssFilter:     true,
		ReferrerPolicy:       "strict-origin-when-cross-origin",
	}))
	r.Use(SettlementDataLoaderInjectionMiddleware(expenses, trips))
}
