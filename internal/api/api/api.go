package api

import (
	"github.com/gin-contrib/cors"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/ginext"

	"eventify/cmd/middleware"
	"eventify/internal/service"
)

type Routers struct {
	Service    service.Service
	AuthSecret string
	Redis      *redis.Client
	RateLimit  middleware.RateLimitConfig
}

func NewRouters(r *Routers) *ginext.Engine {
	app := ginext.New("release")

	app.Use(middleware.LoggingMiddleware())
	app.Use(cors.Default())

	apiGroup := app.Group("/v1")

	apiGroup.GET("/events", r.Service.GetAllEvents)
	apiGroup.GET("/events/:id", r.Service.GetInfo)
	apiGroup.GET("/events/:id/seats", r.Service.GetSeats)

	authed := apiGroup.Group("")
	authed.Use(middleware.Auth(r.AuthSecret))

	booking := authed.Group("")
	booking.Use(middleware.RateLimit(r.RateLimit, r.Redis))
	booking.POST("/events/:id/book", r.Service.BookTickets)
	booking.POST("/events/:id/seats/book", r.Service.BookSeats)

	authed.POST("/bookings/:id/cancel", r.Service.CancelBooking)
	authed.GET("/bookings", r.Service.GetMyBookings)
	authed.GET("/bookings/:id/seats", r.Service.GetBookingSeats)

	admin := authed.Group("")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/events", r.Service.CreateEvent)
	admin.PUT("/events/:id", r.Service.UpdateEvent)
	admin.DELETE("/events/:id", r.Service.DeleteEvent)
	admin.POST("/events/:id/seats", r.Service.CreateSeats)
	admin.POST("/events/:id/seats/generate", r.Service.GenerateSeats)

	return app
}
