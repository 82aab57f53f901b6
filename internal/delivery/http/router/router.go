// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"loyalty/internal/delivery/http/router/handler"
	"loyalty/internal/infra/metrics"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	LoyaltyHandler *handler.LoyaltyHandler
	EventHandler   *handler.EventHandler
	Metrics        *metrics.Metrics
}

// router holds all the handlers that need to be registered.
type router struct {
	loyaltyHandler *handler.LoyaltyHandler
	eventHandler   *handler.EventHandler
	metrics        *metrics.Metrics
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		loyaltyHandler: params.LoyaltyHandler,
		eventHandler:   params.EventHandler,
		metrics:        params.Metrics,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Prometheus metrics endpoint
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(
		r.metrics.Registry,
		promhttp.HandlerOpts{},
	)))

	loyaltyGroup := e.Group("/loyalty")
	{
		// Account reads
		loyaltyGroup.GET("/users/:userId/balance", r.loyaltyHandler.GetBalance)
		loyaltyGroup.GET("/users/:userId/transactions", r.loyaltyHandler.ListTransactions)
		loyaltyGroup.GET("/users/:userId/vouchers", r.loyaltyHandler.ListVouchers)

		// Reward catalog and redemption
		loyaltyGroup.GET("/rewards", r.loyaltyHandler.ListRewards)
		loyaltyGroup.POST("/redemptions", r.loyaltyHandler.Redeem)

		// Voucher consumption
		loyaltyGroup.POST("/vouchers/apply", r.loyaltyHandler.ApplyVoucher)
		loyaltyGroup.GET("/vouchers/:code/qr", r.loyaltyHandler.VoucherQR)

		// Earning event hooks from the order and registration subsystems
		eventGroup := loyaltyGroup.Group("/events")
		eventGroup.POST("/order-completed", r.eventHandler.OrderCompleted)
		eventGroup.POST("/signup", r.eventHandler.Signup)
	}
}
