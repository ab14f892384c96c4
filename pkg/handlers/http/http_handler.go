package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

type HandlerTransport struct {
	// Runs
	StartRunHandler      Handler
	GetCurrentRunHandler Handler
	StopRunHandler       Handler
	GetRunHandler        Handler

	// Simulation backend
	GetBackendHealthHandler Handler

	GetVersionHandler Handler
}
