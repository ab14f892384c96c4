package router

import (
	"errors"

	handlers "github.com/NeuralTrust/TrustRedTeam/pkg/handlers/http"
	wsHandlers "github.com/NeuralTrust/TrustRedTeam/pkg/handlers/websocket"
	"github.com/NeuralTrust/TrustRedTeam/pkg/server/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

const (
	VersionPath     = "/version"
	WebsocketPath   = "/ws"
	SwaggerSpecPath = "/swagger.json"
	SwaggerSpecFile = "./docs/swagger.json"
)

var (
	ErrInvalidHandlerTransport = errors.New("invalid handler transport")
)

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    *handlers.HandlerTransport
	runStreamHandler    wsHandlers.Handler
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport *handlers.HandlerTransport,
	runStreamHandler wsHandlers.Handler,
) RouteBuilder {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		runStreamHandler:    runStreamHandler,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	if r.handlerTransport == nil || r.runStreamHandler == nil {
		return ErrInvalidHandlerTransport
	}
	handlerTransport := r.handlerTransport

	router.Static(SwaggerSpecPath, SwaggerSpecFile)
	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: SwaggerSpecPath,
	}))

	router.Get(VersionPath, handlerTransport.GetVersionHandler.Handle)

	v1 := router.Group("/api/v1")
	{
		if r.middlewareTransport != nil {
			r.middlewareTransport.Apply(v1)
		}

		runs := v1.Group("/runs")
		{
			runs.Post("", handlerTransport.StartRunHandler.Handle)
			runs.Get("/current", handlerTransport.GetCurrentRunHandler.Handle)
			runs.Delete("/current", handlerTransport.StopRunHandler.Handle)
			// registered before /:run_id so "ws" is never taken for an id
			runs.Get(WebsocketPath, websocket.New(r.runStreamHandler.Handle))
			runs.Get("/:run_id", handlerTransport.GetRunHandler.Handle)
		}

		backend := v1.Group("/backend")
		{
			backend.Get("/health", handlerTransport.GetBackendHealthHandler.Handle)
		}
	}

	return nil
}
