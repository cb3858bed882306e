// Package present turns widget trees into HTML fragments and terminal text.
package present

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/starford/dynwidget/internal/widget"
)

var fragment = template.Must(template.New("fragment").Parse(`
{{- define "node" -}}
{{- if eq .Kind "root" -}}
<div class="{{.Class}}">{{range .Children}}{{template "node" .}}{{end}}</div>
{{- else if eq .Kind "heading" -}}
{{- if eq .Level 2}}<h2>{{.Text}}</h2>{{else}}<h4>{{.Text}}</h4>{{end -}}
{{- else if eq .Kind "paragraph" -}}
<p{{with .Class}} class="{{.}}"{{end}}>{{.Text}}</p>
{{- else if eq .Kind "section" -}}
<section>{{range .Children}}{{template "node" .}}{{end}}</section>
{{- else if eq .Kind "list" -}}
<ul>{{range .Children}}{{template "node" .}}{{end}}</ul>
{{- else if eq .Kind "item" -}}
<li{{with .Bullet}} data-bullet="{{.}}"{{end}}>{{range .Children}}{{template "node" .}}{{end}}</li>
{{- else if eq .Kind "link" -}}
<a href="#" data-path="{{.Path}}" data-pane="{{.Pane}}">{{.Text}}</a>
{{- else if eq .Kind "active" -}}
<span class="{{.Class}}">{{.Text}}</span>
{{- end -}}
{{- end -}}`))

// HTML renders tree as an escaped HTML fragment. Empty nodes produce no
// markup.
func HTML(tree *widget.Node) (string, error) {
	var buf bytes.Buffer
	if err := fragment.ExecuteTemplate(&buf, "node", tree); err != nil {
		return "", fmt.Errorf("present: html: %w", err)
	}
	return buf.String(), nil
}
