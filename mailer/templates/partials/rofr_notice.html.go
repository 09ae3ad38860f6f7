package partials

var ROFRNotice Partial = `
{{ define "content" }}
	Hello {{ .Name }},<br>
	<br>
	A proposed transfer of {{ .Shares }} {{ .Class }} shares by {{ .Seller }} is subject
	to your right of first refusal under the shareholders agreement.<br>
	<br>
	<b>You may elect to purchase some or all of the offered shares at {{ .Price }} per
	share until {{ .WindowEnd }}.</b><br>
	<br>
	If you do not respond by that date, your right with respect to this transfer lapses
	and the transfer may proceed as proposed. To exercise your right, contact the
	corporate secretary with the number of shares you wish to purchase.
	<br><br><br>
	Kind regards,<br>
	<br>
	The Alpaca Team<br>
	<a href="https://registry.alpaca.markets" style="text-decoration: none; color: #bfa100;">https://registry.alpaca.markets</a>
{{ end }}
`
