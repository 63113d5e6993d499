package server

import (
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Echoを組み立てる（テストからも使う）
func New(productH *handler.ProductHandler, categoryH *handler.CategoryHandler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e, productH, categoryH)
	return e
}

func Start(addr string, productH *handler.ProductHandler, categoryH *handler.CategoryHandler) error {
	e := New(productH, categoryH)
	return e.Start(addr)
}
