package handler

import "github.com/labstack/echo/v4"

// Handlers はルーティング対象のハンドラー一式
type Handlers struct {
	Event       *EventHandler
	Reservation *ReservationHandler
	Health      *HealthHandler
}

// RegisterRoutes は /api/v1 配下にルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	v1.GET("/events", h.Event.List)
	v1.GET("/events/:id", h.Event.GetByID)
	v1.GET("/events/:id/availability", h.Event.Availability)

	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations/:id", h.Reservation.GetByID)
}
