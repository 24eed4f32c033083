package user

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

const passwordChangedText = `Hello %s,

The password of your member portal account (%s) was changed on %s.
If you did not ask for this change, please contact the church office.`

// PasswordChangedNotice builds the message sent after an administrative password reset.
// It returns nil when the person has no email address on file.
func (svc *Service) PasswordChangedNotice(ctx context.Context, username string) (*core.EmailMessage, error) {
	cred, err := svc.repo.GetCredentialByUsername(ctx, core.CleanString(username))
	if err != nil {
		return nil, errors.Wrap(err, "getting credential")
	}
	p, err := svc.profiles.ReadRaw(ctx, cred.PersonID)
	if err != nil {
		return nil, errors.Wrap(err, "reading person")
	}
	if !p.Contact.Email.Valid || p.Contact.Email.String == "" {
		return nil, nil
	}

	name := p.Personal.FullName
	if name == "" {
		name = cred.Username
	}
	return &core.EmailMessage{
		To:          []mail.Address{{Name: p.Personal.FullName, Address: p.Contact.Email.String}},
		Subject:     "Your password was changed",
		TextContent: fmt.Sprintf(passwordChangedText, name, cred.Username, core.NowFunc().UTC().Format("2006-01-02 15:04 MST")),
	}, nil
}
