package partials

var OverdueReminder Partial = `
{{ define "content" }}
	Hello {{ .Name }},<br>
	<br>
	The <b>{{ .Step }}</b> step of the {{ .Action }} approval workflow has passed
	its deadline of {{ .Deadline }} without a decision.<br>
	<br>
	The requested action remains blocked until the step is approved, rejected, or
	the request is cancelled. Please review the pending step at your earliest
	convenience.
	<br><br><br>
	Kind regards,<br>
	<br>
	The Alpaca Team<br>
	<a href="https://registry.alpaca.markets" style="text-decoration: none; color: #bfa100;">https://registry.alpaca.markets</a>
{{ end }}
`
