// Package middleware holds the echo middleware shared by all routes.
package middleware

import (
	"github.com/lattice-kg/lattice/pkg/store"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"
)

// App bundles the long-lived clients every route handler needs.
type App struct {
	DBConn *pgxpool.Pool
	Queue  *amqp091.Channel
	S3     *s3.Client
	Store  store.GraphStorage
}

// AppContext wraps the echo context with the application clients.
type AppContext struct {
	echo.Context
	App *App
}

// AppContextMiddleware injects the App into every request context.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			return next(&AppContext{Context: c, App: app})
		}
	}
}
