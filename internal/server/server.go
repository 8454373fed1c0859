package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nextdevhq/storefront/internal/auth"
	authdomain "github.com/nextdevhq/storefront/internal/auth/domain"
	"github.com/nextdevhq/storefront/internal/config"
	"github.com/nextdevhq/storefront/internal/observability"
	obsmiddleware "github.com/nextdevhq/storefront/internal/observability/logger"
	obsmetrics "github.com/nextdevhq/storefront/internal/observability/metrics"
	"github.com/nextdevhq/storefront/internal/order"
	orderdomain "github.com/nextdevhq/storefront/internal/order/domain"
	"github.com/nextdevhq/storefront/internal/providers"
	"github.com/nextdevhq/storefront/internal/providers/email"
	"github.com/nextdevhq/storefront/internal/purchase"
	purchasedomain "github.com/nextdevhq/storefront/internal/purchase/domain"
	"github.com/nextdevhq/storefront/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	providers.Module,
	auth.Module,
	order.Module,
	purchase.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterAPIRoutes()
	}),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obsmetrics.GinMiddleware(m))
	r.Use(CORS(cfg.CORSAllowOrigin))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, m *obsmetrics.Metrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, m)
}

type ServerParams struct {
	fx.In

	Engine      *gin.Engine
	Cfg         config.Config
	Log         *zap.Logger
	Merchant    *config.MerchantConfigHolder
	AuthSvc     authdomain.Service
	OrderSvc    orderdomain.Service
	PurchaseSvc purchasedomain.Service
	Limiter     *ratelimit.PaymentsLimiter `optional:"true"`
	Emailer     email.Provider             `optional:"true"`
}

type Server struct {
	engine      *gin.Engine
	cfg         config.Config
	log         *zap.Logger
	merchant    *config.MerchantConfigHolder
	authsvc     authdomain.Service
	ordersvc    orderdomain.Service
	purchasesvc purchasedomain.Service
	limiter     *ratelimit.PaymentsLimiter
	emailer     email.Provider
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:      p.Engine,
		cfg:         p.Cfg,
		log:         p.Log.Named("server"),
		merchant:    p.Merchant,
		authsvc:     p.AuthSvc,
		ordersvc:    p.OrderSvc,
		purchasesvc: p.PurchaseSvc,
		limiter:     p.Limiter,
		emailer:     p.Emailer,
	}
}

func (s *Server) RegisterAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/site/config", s.GetSiteConfig)

	payments := api.Group("/payments")
	payments.Use(s.AuthRequired())
	payments.POST("/orders", s.RateLimited(s.allowOrder), s.CreatePaymentOrder)
	payments.POST("/verify", s.RateLimited(s.allowVerify), s.VerifyPayment)

	purchases := api.Group("/purchases")
	purchases.Use(s.AuthRequired())
	purchases.GET("", s.ListPurchases)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
