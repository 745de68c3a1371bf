package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	activitydomain "github.com/smallbiznis/fieldbill/internal/activity/domain"
	"github.com/smallbiznis/fieldbill/internal/config"
	credsdomain "github.com/smallbiznis/fieldbill/internal/credentials/domain"
	customerdomain "github.com/smallbiznis/fieldbill/internal/customer/domain"
	dashboarddomain "github.com/smallbiznis/fieldbill/internal/dashboard/domain"
	invoicedomain "github.com/smallbiznis/fieldbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/fieldbill/internal/payment/domain"
	"github.com/smallbiznis/fieldbill/internal/providers/pdf"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

// NewEngine builds the shared gin engine with the middleware chain and
// the operational endpoints. Feature routes attach in NewServer.
func NewEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestID(),
		requestLogger(log),
		observe(),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

type ServerParams struct {
	fx.In

	Log         *zap.Logger
	Config      config.Config
	Credentials credsdomain.Service
	Customers   customerdomain.Service
	Invoices    invoicedomain.Service
	Payments    paymentdomain.Service
	Activities  activitydomain.Service
	Dashboard   dashboarddomain.Service
	Renderer    pdf.Renderer
}

// Server exposes the ledgers and the platform credential store over HTTP.
type Server struct {
	log         *zap.Logger
	cfg         config.Config
	credentials credsdomain.Service
	customers   customerdomain.Service
	invoices    invoicedomain.Service
	payments    paymentdomain.Service
	activities  activitydomain.Service
	dashboard   dashboarddomain.Service
	renderer    pdf.Renderer
}

func NewServer(r *gin.Engine, p ServerParams) *Server {
	s := &Server{
		log:         p.Log.Named("http.server"),
		cfg:         p.Config,
		credentials: p.Credentials,
		customers:   p.Customers,
		invoices:    p.Invoices,
		payments:    p.Payments,
		activities:  p.Activities,
		dashboard:   p.Dashboard,
		renderer:    p.Renderer,
	}
	s.registerRoutes(r)
	return s
}

func (s *Server) registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	cfg := api.Group("/config")
	{
		cfg.GET("", s.getConfig)
		cfg.PUT("", s.updateConfig)
		cfg.DELETE("", s.clearConfig)
		cfg.GET("/status", s.configStatus)
	}

	customers := api.Group("/customers")
	{
		customers.GET("", s.listCustomers)
		customers.POST("", s.createCustomer)
		customers.GET("/:id", s.getCustomer)
		customers.PUT("/:id", s.updateCustomer)
		customers.DELETE("/:id", s.deleteCustomer)
	}

	invoices := api.Group("/invoices")
	{
		invoices.GET("", s.listInvoices)
		invoices.POST("", s.createInvoice)
		invoices.GET("/:id", s.getInvoice)
		invoices.POST("/:id/cancel", s.cancelInvoice)
		invoices.POST("/:id/send", s.sendInvoice)
		invoices.GET("/:id/pdf", s.invoicePDF)
		invoices.GET("/:id/receipt", s.receiptPDF)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", s.processPayment)
		payments.GET("", s.listPayments)
	}

	activities := api.Group("/activities")
	{
		activities.GET("", s.listActivities)
		activities.DELETE("", s.clearActivities)
	}

	dashboard := api.Group("/dashboard")
	{
		dashboard.GET("", s.dashboardSnapshot)
		dashboard.GET("/trend", s.dashboardTrend)
	}
}

func run(lc fx.Lifecycle, log *zap.Logger, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("http server stopped", zap.Error(err))
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
