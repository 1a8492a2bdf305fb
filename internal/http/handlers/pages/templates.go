package pages

import (
	"html/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} - Wellness</title></head>
<body>
<header>
  <a href="/">Wellness</a>
  {{with .User}}<span>{{.Name}} ({{.Role}})</span>
  <form method="post" action="/logout" style="display:inline"><button type="submit">Log out</button></form>
  {{else}}<a href="/login">Log in</a>{{end}}
</header>
<main>{{template "content" .}}</main>
</body>
</html>{{end}}`

const homeContent = `{{define "content"}}
<h1>Student wellness</h1>
{{if .User}}<p><a href="{{.Landing}}">Go to your area</a></p>
{{else}}<p>Log in to book sessions, keep a journal and join the community.</p>{{end}}
{{end}}`

const loginContent = `{{define "content"}}
<h1>Log in</h1>
{{with .Error}}<p role="alert">{{.}}</p>{{end}}
<form method="post" action="/login">
  <input type="hidden" name="next" value="{{.Next}}">
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Log in</button>
</form>
{{end}}`

const areaContent = `{{define "content"}}
<h1>{{.Title}}</h1>
<p>{{.Intro}}</p>
{{end}}`

func mustParse(content string) *template.Template {
	return template.Must(template.Must(template.New("layout").Parse(layout)).Parse(content))
}

var (
	homeTmpl  = mustParse(homeContent)
	loginTmpl = mustParse(loginContent)
	areaTmpl  = mustParse(areaContent)
)
