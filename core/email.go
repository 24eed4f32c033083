package core

import (
	"context"
	"net/mail"
)

// EmailMessage is a plain notification. HTMLContent is optional.
type EmailMessage struct {
	To          []mail.Address
	Subject     string
	TextContent string
	HTMLContent string
}

func (msg EmailMessage) HasRecipients() bool {
	return len(msg.To) > 0
}

func (msg EmailMessage) HasContent() bool {
	return msg.TextContent != "" || msg.HTMLContent != ""
}

type EmailService interface {
	// Send delivers msg; messages without recipients or content are skipped.
	Send(ctx context.Context, msg *EmailMessage) error
}
