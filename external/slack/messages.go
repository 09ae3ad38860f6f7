package slack

import (
	"encoding/json"
	"fmt"

	"github.com/alpacahq/gopaca/env"
	"github.com/alpacahq/gopaca/log"
	sl "github.com/ashwanthkumar/slack-go-webhook"
)

type Message struct {
	prod *channel
	stg  *channel
	body interface{}
}

func (m *Message) SetBody(body interface{}) {
	m.body = body
}

func (m *Message) FormatBody() string {
	switch v := m.body.(type) {
	case string:
		return v
	default:
		buf, _ := json.MarshalIndent(v, "", "\t")
		return fmt.Sprintf("```%s```", string(buf))
	}
}

func (m *Message) SendStaging() {
	m.send(m.stg)
}

func (m *Message) SendProduction() {
	m.send(m.prod)
}

func (m *Message) send(ch *channel) {
	if ch == nil || ch.webhook == "" {
		return
	}

	errors := sl.Send(
		ch.webhook,
		"", sl.Payload{
			Text:     m.FormatBody(),
			Channel:  ch.name,
			Username: ch.user,
		})

	if len(errors) > 0 {
		log.Error("slack send errors", "errors", errors)
	}
}

type channel struct {
	name    string
	user    string
	webhook string
}

func NewBatchStatus() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#registry-batch-status",
			user:    "Production Batch",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#registry-batch-status-stg",
			user:    "Staging Batch",
		},
	}
}

func NewMailFailure() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#mail-failures",
			user:    "Mail Failures",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#mail-failures-stg",
			user:    "Staging Mail Failures",
		},
	}
}

func NewServerError() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#server-errors",
			user:    "Server Errors",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#server-errors-stg",
			user:    "Staging Server Errors",
		},
	}
}

// NewGovernanceActivity announces workflow and resolution outcomes to
// the corporate secretary channel.
func NewGovernanceActivity() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#governance-activity",
			user:    "Share Register",
		},
		stg: nil,
	}
}

func NewRegistrarMismatch() Message {
	return Message{
		prod: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#registrar-mismatches",
			user:    "Registrar Reconciliation",
		},
		stg: &channel{
			webhook: env.GetVar("SLACK_WEBHOOK"),
			name:    "#registrar-mismatches-stg",
			user:    "Staging Registrar Reconciliation",
		},
	}
}
