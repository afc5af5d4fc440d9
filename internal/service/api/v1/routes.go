// Package v1 /api/v1 라우트를 등록합니다.
package v1

import (
	"github.com/darkkaiser/price-tracker/internal/service/api/auth"
	"github.com/darkkaiser/price-tracker/internal/service/api/middleware"
	"github.com/darkkaiser/price-tracker/internal/service/api/v1/handler"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes 모든 v1 엔드포인트는 X-App-Key 인증이 필요합니다.
func RegisterRoutes(e *echo.Echo, h *handler.Handler, authenticator *auth.Authenticator) {
	g := e.Group("/api/v1",
		middleware.RequireAppKey(authenticator),
		middleware.RequireJSON(),
	)

	users := g.Group("/users/:user_id")
	users.POST("/products", h.CreateProductHandler)
	users.GET("/products", h.ListProductsHandler)
	users.GET("/products/:product_id", h.GetProductHandler)
	users.PATCH("/products/:product_id", h.UpdateProductHandler)
	users.DELETE("/products/:product_id", h.DeleteProductHandler)
	users.PUT("/channel", h.LinkChannelHandler)

	g.POST("/check", h.TriggerCheckHandler)
}
