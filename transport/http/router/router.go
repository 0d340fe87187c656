package router

import (
	"roomtime/internal/handlers/booking"
	"roomtime/internal/handlers/room"
	"roomtime/internal/handlers/schedule"
	"roomtime/internal/handlers/session"

	"github.com/go-chi/chi/v5"
)

type DomainHandlers struct {
	Room     room.Handler
	Booking  booking.Handler
	Session  session.Handler
	Schedule schedule.Handler
}

type Router struct {
	DomainHandlers DomainHandlers
}

func (r *Router) SetupRoutes(router chi.Router) {
	router.Route("/v1", func(routerGroup chi.Router) {
		r.DomainHandlers.Room.Router(routerGroup)
		r.DomainHandlers.Booking.Router(routerGroup)
		r.DomainHandlers.Session.Router(routerGroup)
		r.DomainHandlers.Schedule.Router(routerGroup)
	})
}

func New(domainHandlers DomainHandlers) Router {
	return Router{
		DomainHandlers: domainHandlers,
	}
}
