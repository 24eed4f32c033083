package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// registerSPA serves the built client from publicDir, falling back to index.html
// for client-side routes. Nothing is served when publicDir is empty.
func registerSPA(app *echo.Echo, publicDir string) {
	if publicDir == "" {
		return
	}

	app.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			h := ctx.Response().Header()
			switch ctx.Request().URL.Path {
			case "/sw.js":
				h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
				h.Set("Service-Worker-Allowed", "/")
			case "/manifest.json":
				h.Set("Cache-Control", "public, max-age=604800")
			}
			return next(ctx)
		}
	})
	app.Use(middleware.StaticWithConfig(middleware.StaticConfig{
		Root:       ".",
		Filesystem: http.Dir(publicDir),
		HTML5:      true,
		Skipper: func(ctx echo.Context) bool {
			p := ctx.Request().URL.Path
			return p == "/api" || strings.HasPrefix(p, "/api/")
		},
	}))
}
