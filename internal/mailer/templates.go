package mailer

import (
	"bytes"
	"html/template"
	"strings"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<h2>Invitation</h2>
<p>You have been invited to manage the site.</p>
<p><a href="{{.Link}}">Choose your password</a></p>
<p>This link expires in 24 hours.</p>
`))

var contactTmpl = template.Must(template.New("contact").Parse(`<h2>Nouveau message de contact</h2>
<p><strong>De :</strong> {{.Name}}</p>
<p><strong>Email :</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
<p><strong>Message :</strong></p>
<p>{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
`))

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<h2>Merci pour votre message</h2>
<p>Bonjour {{.Name}},</p>
<p>Nous avons bien reçu votre message. Notre équipe vous répondra dans les meilleurs délais.</p>
<p>Cordialement,</p>
<p>L'équipe Batala La Rochelle</p>
`))

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func InvitationHTML(link string) (string, error) {
	return render(invitationTmpl, struct{ Link string }{link})
}

func ContactHTML(name, email, message string) (string, error) {
	return render(contactTmpl, struct {
		Name  string
		Email string
		Lines []string
	}{name, email, strings.Split(message, "\n")})
}

func ConfirmationHTML(name string) (string, error) {
	return render(confirmationTmpl, struct{ Name string }{name})
}
