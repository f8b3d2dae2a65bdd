// Package ai drafts outreach copy for an organization. The default
// implementation is template-based; a hosted-model implementation can
// satisfy the same interface.
package ai

import (
	"bytes"
	"context"
	"text/template"

	organizationdomain "github.com/oneeighty/connect/internal/organization/domain"
)

// Generator produces an outreach draft for one organization.
type Generator interface {
	Draft(ctx context.Context, org organizationdomain.Organization) (string, error)
}

type NoOpGenerator struct{}

func (g *NoOpGenerator) Draft(ctx context.Context, org organizationdomain.Organization) (string, error) {
	return "", nil
}

var draftTemplate = template.Must(template.New("draft").Parse(
	`Hello {{.Name}},

We work with community organizations{{if ne .City "N/A"}} in {{.City}}{{end}} and would love to tell you about our programme.
{{- if ne .Activities "N/A"}}

We read about your work: {{.Activities}}
{{- end}}

Best regards,
The team`))

// TemplateGenerator renders a fixed outreach template from the
// organization's own fields.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) Draft(ctx context.Context, org organizationdomain.Organization) (string, error) {
	var buf bytes.Buffer
	if err := draftTemplate.Execute(&buf, org); err != nil {
		return "", err
	}
	return buf.String(), nil
}
