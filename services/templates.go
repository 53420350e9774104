package services

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
)

// The text and HTML greetings are independent templates; keep them in step.
var (
	welcomeText = template.Must(template.New("welcome.txt").Parse(`Hi {{.Name}},
Welcome to {{.Sender}}!
Let's get these grades fam.
- {{.Sender}}
`))

	welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome.html").Parse(`<html>
    <body>
        <p>Hi {{.Name}},</p>
        <p>Welcome to {{.Sender}}!</p>
        <p>Let's get these grades fam.</p>
        <p>{{.Sender}}</p>
    </body>
</html>
`))
)

type greeting struct {
	Name   string
	Sender string
}

func renderGreeting(name, sender string) (text, html string, err error) {
	data := greeting{Name: name, Sender: sender}

	var tb, hb bytes.Buffer
	if err := welcomeText.Execute(&tb, data); err != nil {
		return "", "", err
	}
	if err := welcomeHTML.Execute(&hb, data); err != nil {
		return "", "", err
	}
	return tb.String(), hb.String(), nil
}
