package email

import (
	"github.com/alpacahq/goregistry/mailer/templates"
	"github.com/alpacahq/goregistry/mailer/templates/layouts"
	"github.com/alpacahq/goregistry/mailer/templates/partials"
	"github.com/alpacahq/goregistry/models/enum"
	"github.com/dustin/go-humanize"
	"github.com/kataras/iris"
)

func ROFRNotice(ctx iris.Context) {
	tmplData := struct {
		Name      string
		Seller    string
		Shares    string
		Class     string
		Price     string
		WindowEnd string
	}{
		Name:      "First",
		Seller:    "Meridian Capital LLC",
		Shares:    humanize.Comma(50000),
		Class:     enum.Common.Readable(),
		Price:     "$12.50",
		WindowEnd: "Sep 24, 2026",
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.ROFRNotice, tmplData)
	if err != nil {
		ctx.WriteString(err.Error())
		return
	}
	ctx.HTML(html)
}

func MeetingNotice(ctx iris.Context) {
	tmplData := struct {
		Name           string
		Action         string
		MeetingDate    string
		ResolutionKind string
		LeadDays       int
	}{
		Name:           "First",
		Action:         enum.ConstitutionAmendment.Readable(),
		MeetingDate:    "Sep 24, 2026",
		ResolutionKind: string(enum.Special),
		LeadDays:       30,
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.MeetingNotice, tmplData)
	if err != nil {
		ctx.WriteString(err.Error())
		return
	}
	ctx.HTML(html)
}

func WorkflowApproved(ctx iris.Context) {
	tmplData := struct {
		Name        string
		Action      string
		RequestedAt string
		Outcome     string
		Approved    bool
		Response    string
		Workflow    string
	}{
		Name:        "First",
		Action:      enum.ShareIssuance.Readable(),
		RequestedAt: "Aug 20, 2026",
		Outcome:     "approved",
		Approved:    true,
		Workflow:    "7c2b5e57-46c5-4b7d-8de9-3d6821a9e648",
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.WorkflowOutcome, tmplData)
	if err != nil {
		ctx.WriteString(err.Error())
		return
	}
	ctx.HTML(html)
}

func WorkflowRejected(ctx iris.Context) {
	tmplData := struct {
		Name        string
		Action      string
		RequestedAt string
		Outcome     string
		Approved    bool
		Response    string
		Workflow    string
	}{
		Name:        "First",
		Action:      enum.ShareIssuance.Readable(),
		RequestedAt: "Aug 20, 2026",
		Outcome:     "rejected",
		Approved:    false,
		Response:    "dilution exceeds the authorized pool",
		Workflow:    "7c2b5e57-46c5-4b7d-8de9-3d6821a9e648",
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.WorkflowOutcome, tmplData)
	if err != nil {
		ctx.WriteString(err.Error())
		return
	}
	ctx.HTML(html)
}

func OverdueReminder(ctx iris.Context) {
	tmplData := struct {
		Name     string
		Action   string
		Step     string
		Deadline string
	}{
		Name:     "First",
		Action:   enum.ShareTransfer.Readable(),
		Step:     "board approval",
		Deadline: "Sep 14, '26 09:00",
	}

	html, err := templates.ExecuteTemplate(layouts.Base(), partials.OverdueReminder, tmplData)
	if err != nil {
		ctx.WriteString(err.Error())
		return
	}
	ctx.HTML(html)
}
