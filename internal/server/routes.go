package server

import (
	"app/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, productH *handler.ProductHandler, categoryH *handler.CategoryHandler) {
	productH.RegisterRoutes(e)
	categoryH.RegisterRoutes(e)
}
