package emailsvc

import (
	"io"

	"github.com/pkg/errors"

	"github.com/vinckarunia/raha-member-app/core"
)

// Email backends selectable through email.backend.
const (
	BackendConsole  = "console"
	BackendSendgrid = "sendgrid"
)

// New returns the configured backend. The console backend writes to out.
func New(conf *core.Config, out io.Writer) (core.EmailService, error) {
	switch conf.Email.Backend {
	case "", BackendConsole:
		return NewConsoleService(conf, out), nil
	case BackendSendgrid:
		return NewSendgridService(conf)
	default:
		return nil, errors.Errorf("unknown email backend %q", conf.Email.Backend)
	}
}
