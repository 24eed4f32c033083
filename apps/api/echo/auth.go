package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/vinckarunia/raha-member-app/core"
	"github.com/vinckarunia/raha-member-app/core/user"
)

const contextSessionKey = "session"

// extractBearer returns the token of an `Authorization: Bearer <token>` header.
func extractBearer(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(strings.TrimSpace(auth), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// bearerAuth resolves the bearer token to a user.Session stored in the context.
func bearerAuth(svc AuthService, logger core.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			c := ctx.Request().Context()
			s, err := svc.Authenticate(c, extractBearer(ctx))
			if err != nil {
				return err
			}
			ctx.Set(contextSessionKey, s)

			if err := svc.Touch(c, s); err != nil {
				logger.Warn("touching token", err, sessionIdentity(s))
			}
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) (user.Session, error) {
	if s, ok := ctx.Get(contextSessionKey).(user.Session); ok {
		return s, nil
	}
	return user.Session{}, user.ErrUnauthenticated
}

func sessionIdentity(s user.Session) core.Identity {
	return core.Identity{ID: strconv.Itoa(s.PersonID()), Username: s.Username}
}
