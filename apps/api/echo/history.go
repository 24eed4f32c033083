package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core/user"
)

func registerHistoryAPI(g *echo.Group, auth echo.MiddlewareFunc, svc HistoryService) {
	g.GET("/history", func(ctx echo.Context) error {
		s, err := getContextSession(ctx)
		if err != nil {
			return err
		}
		rows, err := svc.History(ctx.Request().Context(), s.PersonID())
		if err != nil {
			return errors.Wrap(err, "querying attendance history")
		}
		return ok(ctx, rows)
	}, auth, requireAbility(user.AbilityProfileRead))
}
