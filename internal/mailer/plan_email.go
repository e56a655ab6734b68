package mailer

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// markdown renders trainer-written plans. Raw HTML in the input is escaped
// because WithUnsafe is not set.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// PlanEmail is the data for the "your plan is ready" message.
type PlanEmail struct {
	MemberName    string
	TrainerName   string
	PlanType      string
	Content       string // Markdown
	AttachmentURL string
}

var planTemplate = template.Must(template.New("plan").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222; max-width: 640px; margin: 0 auto;">
  <h2>Hi {{.MemberName}},</h2>
  <p>{{.TrainerName}} has prepared your {{.PlanType}} plan.</p>
  <div style="border-left: 4px solid #2d7ff9; padding: 8px 16px; background: #f6f8fb;">
    {{.Body}}
  </div>
  {{if .AttachmentURL}}<p><a href="{{.AttachmentURL}}">Download the attached plan document</a> (link valid for 7 days).</p>{{end}}
  <p>Questions? Reply to your trainer through the portal.</p>
</body>
</html>
`))

// RenderMarkdown converts Markdown to safe HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	// Without html.WithUnsafe goldmark drops raw HTML, so the output can be embedded as-is.
	return template.HTML(buf.String()), nil
}

// RenderPlanEmail builds the subject and HTML body for a fulfilled plan request.
func RenderPlanEmail(p PlanEmail) (subject, body string, err error) {
	rendered, err := RenderMarkdown(p.Content)
	if err != nil {
		return "", "", fmt.Errorf("render plan markdown: %w", err)
	}
	var buf bytes.Buffer
	err = planTemplate.Execute(&buf, struct {
		PlanEmail
		Body template.HTML
	}{p, rendered})
	if err != nil {
		return "", "", fmt.Errorf("render plan email: %w", err)
	}
	return fmt.Sprintf("Your %s plan from %s", p.PlanType, p.TrainerName), buf.String(), nil
}
