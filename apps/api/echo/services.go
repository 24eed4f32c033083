package echoapi

import (
	"context"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/vinckarunia/raha-member-app/core/attendance"
	"github.com/vinckarunia/raha-member-app/core/member"
	"github.com/vinckarunia/raha-member-app/core/user"
)

type (
	AuthService interface {
		Login(ctx context.Context, req user.LoginRequest) (user.LoginResult, error)
		Authenticate(ctx context.Context, bearer string) (user.Session, error)
		Touch(ctx context.Context, s user.Session) error
		Logout(ctx context.Context, s user.Session) error
		Current(ctx context.Context, s user.Session) (user.View, error)
	}

	ProfileService interface {
		Read(ctx context.Context, personID int) (member.Profile, error)
		Update(ctx context.Context, personID, editorID int, changes member.ProfileChanges) (member.Profile, error)
		FieldDefinitions(ctx context.Context) (member.FieldDefinitions, error)
		QR(ctx context.Context, personID int) (member.QRIdentity, error)
	}

	HistoryService interface {
		History(ctx context.Context, personID int) ([]attendance.HistoryRow, error)
	}

	// Validator bundles the validator with the translator of its messages.
	Validator struct {
		Validate   *validator.Validate
		Translator ut.Translator
	}
)

var (
	_ AuthService    = (*user.Service)(nil)
	_ ProfileService = (*member.Service)(nil)
	_ HistoryService = (*attendance.Service)(nil)
)
