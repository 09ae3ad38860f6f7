package partials

var MeetingNotice Partial = `
{{ define "content" }}
	<div style='text-align:left;'>
		<h3>Notice of shareholder meeting</h3><br><br>
		Hello {{ .Name }},<br>
		<br>
		A meeting of the shareholders of AlpacaDB, Inc. has been called to consider
		a proposed {{ .Action }}.
		<br>
		<br>
		<table cellspacing="0" cellpadding="0">
			<tr><td><b>Matter</b></td><td>{{ .Action }}</td></tr>
			<tr><td><b>Meeting date</b></td><td>{{ .MeetingDate }}</td></tr>
			<tr><td><b>Resolution required</b></td><td>{{ .ResolutionKind }}</td></tr>
		</table>
		<br>
		This notice is given {{ .LeadDays }} days in advance as required by the
		constitution. Shareholders of record may vote in person or appoint a proxy
		by written instrument delivered to the corporate secretary before the meeting.
	</div>
	<br><br><br>
	Kind regards,<br>
	<br>
	The Alpaca Team<br>
	<a href="https://registry.alpaca.markets" style="text-decoration: none; color: #bfa100;">https://registry.alpaca.markets</a>
{{ end }}
`
