package router

import "github.com/gofiber/fiber/v2"

// RouteBuilder mounts a group of monitor routes on the public app.
type RouteBuilder interface {
	BuildRoutes(app *fiber.App) error
}
