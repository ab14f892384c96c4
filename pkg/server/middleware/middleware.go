package middleware

import "github.com/gofiber/fiber/v2"

// Middleware is one layer of the run API chain.
type Middleware interface {
	Middleware() fiber.Handler
}

// Transport keeps the run API middlewares in the order they execute.
type Transport struct {
	Middlewares []Middleware
}

func NewTransport(middlewares ...Middleware) *Transport {
	return &Transport{
		Middlewares: middlewares,
	}
}

func (t *Transport) Add(middleware Middleware) {
	t.Middlewares = append(t.Middlewares, middleware)
}

func (t *Transport) Handlers() []fiber.Handler {
	handlers := make([]fiber.Handler, 0, len(t.Middlewares))
	for _, middleware := range t.Middlewares {
		handlers = append(handlers, middleware.Middleware())
	}
	return handlers
}

// Apply mounts every handler on r, keeping the registration order.
func (t *Transport) Apply(r fiber.Router) {
	for _, handler := range t.Handlers() {
		r.Use(handler)
	}
}
