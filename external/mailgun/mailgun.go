package mailgun

import (
	"strconv"
	"sync"
	"time"

	"github.com/alpacahq/gopaca/env"
	mg "github.com/mailgun/mailgun-go"
)

var (
	once    sync.Once
	enabled = false
)

// Email includes all of the fields required to send
// an email using Mailgun.
type Email struct {
	Sender     string
	Subject    string
	PlainText  string
	HTML       string
	Recipient  string
	DeliverAt  *time.Time
	Bcc        string
	Attachment *Attachment
}

type Attachment struct {
	Data []byte
	Name string
}

// Send an email using Mailgun.
func Send(email Email) error {
	once.Do(func() {
		enabled, _ = strconv.ParseBool(env.GetVar("EMAILS_ENABLED"))
	})

	if !enabled {
		return nil
	}

	mgc := mg.NewMailgun(
		env.GetVar("MAILGUN_DOMAIN"),
		env.GetVar("MAILGUN_PRIV_KEY"),
		env.GetVar("MAILGUN_PUB_KEY"),
	)

	msg := mgc.NewMessage(
		email.Sender,
		email.Subject,
		email.PlainText,
		email.Recipient,
	)

	if email.Attachment != nil {
		msg.AddBufferAttachment(email.Attachment.Name, email.Attachment.Data)
	}

	if email.Bcc != "" {
		msg.AddBCC(email.Bcc)
	}

	if email.HTML != "" {
		msg.SetHtml(email.HTML)
	}

	if email.DeliverAt != nil {
		msg.SetDeliveryTime(*email.DeliverAt)
	}

	_, _, err := mgc.Send(msg)

	return err
}
