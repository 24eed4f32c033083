package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
)

type profileApi struct {
	svc      ProfileService
	validate Validator
}

func registerProfileAPI(g *echo.Group, auth echo.MiddlewareFunc, svc ProfileService, validate Validator) {
	api := profileApi{svc: svc, validate: validate}

	g.GET("/profile", api.retrieve, auth, requireAbility(user.AbilityProfileRead))
	g.PUT("/profile", api.update, auth, requireAbility(user.AbilityProfileUpdate))
	g.GET("/profile/qr", api.qr, auth, requireAbility(user.AbilityQRRead))

	g.GET("/custom-fields", api.fieldDefinitions, auth, requireAbility(user.AbilityProfileRead))
}

// Handlers

func (api *profileApi) retrieve(ctx echo.Context) error {
	s, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	p, err := api.svc.Read(ctx.Request().Context(), s.PersonID())
	if err != nil {
		return errors.Wrap(err, "reading profile")
	}
	return ok(ctx, p)
}

func (api *profileApi) update(ctx echo.Context) error {
	s, err := getContextSession(ctx)
	if err != nil {
		return err
	}

	raw := make(map[string]interface{})
	if err := bind(ctx, &raw); err != nil {
		return err
	}
	changes, err := member.NewProfileChanges(raw)
	if err != nil {
		return err
	}
	if err := changes.Validate(api.validate.Validate, api.validate.Translator); err != nil {
		return err
	}

	// members only ever edit their own record
	p, err := api.svc.Update(ctx.Request().Context(), s.PersonID(), s.PersonID(), changes)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ok(ctx, p, "Profile updated successfully")
}

func (api *profileApi) qr(ctx echo.Context) error {
	s, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	qr, err := api.svc.QR(ctx.Request().Context(), s.PersonID())
	if err != nil {
		return errors.Wrap(err, "building qr identity")
	}
	return ok(ctx, qr)
}

func (api *profileApi) fieldDefinitions(ctx echo.Context) error {
	defs, err := api.svc.FieldDefinitions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing field definitions")
	}
	return ok(ctx, defs)
}
