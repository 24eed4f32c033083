package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core/user"
)

type userApi struct {
	svc      AuthService
	validate Validator
}

func registerUserAPI(g *echo.Group, auth echo.MiddlewareFunc, svc AuthService, validate Validator) {
	api := userApi{svc: svc, validate: validate}

	g.POST("/login", api.login)

	// authed endpoints
	g.GET("/user", api.current, auth)
	g.POST("/logout", api.logout, auth)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data user.LoginRequest
	if err := bind(ctx, &data); err != nil {
		return err
	}
	if err := data.Validate(api.validate.Validate, api.validate.Translator); err != nil {
		return err
	}

	res, err := api.svc.Login(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}
	return ok(ctx, res, "Login successful")
}

func (api *userApi) current(ctx echo.Context) error {
	s, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	view, err := api.svc.Current(ctx.Request().Context(), s)
	if err != nil {
		return errors.Wrap(err, "getting current user")
	}
	return ok(ctx, view)
}

func (api *userApi) logout(ctx echo.Context) error {
	s, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Logout(ctx.Request().Context(), s); err != nil {
		return errors.Wrap(err, "logging out")
	}
	return ok(ctx, nil, "Logged out successfully")
}
