package partials

var WorkflowOutcome Partial = `
{{ define "content" }}
	Hello {{ .Name }},<br>
	<br>
	Your {{ .Action }} request submitted on {{ .RequestedAt }} has been
	<b>{{ .Outcome }}</b>.<br>
	<br>
	{{ if .Response }}The responding party noted: {{ .Response }}<br><br>{{ end }}
	{{ if .Approved }}The approved action may now be executed against the share
	register referencing workflow {{ .Workflow }}.{{ else }}No changes have been
	made to the share register. A new request may be submitted once the blocking
	concerns are addressed.{{ end }}
	<br><br><br>
	Kind regards,<br>
	<br>
	The Alpaca Team<br>
	<a href="https://registry.alpaca.markets" style="text-decoration: none; color: #bfa100;">https://registry.alpaca.markets</a>
{{ end }}
`
