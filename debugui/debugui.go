package debugui

import (
	"github.com/alpacahq/goregistry/debugui/email"
	"github.com/kataras/iris"
)

type DebugUI struct {
}

func (ui *DebugUI) Bind(r iris.Party) {
	r.Get("/email/rofr_notice", email.ROFRNotice)
	r.Get("/email/meeting_notice", email.MeetingNotice)
	r.Get("/email/workflow_approved", email.WorkflowApproved)
	r.Get("/email/workflow_rejected", email.WorkflowRejected)
	r.Get("/email/overdue_reminder", email.OverdueReminder)
}
