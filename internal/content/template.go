package content

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/altafino/report-courier/internal/models"
)

// monthNames are the pt-BR month names used in the subject line.
var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// TemplateGenerator is the deterministic content backend. It is also
// the fallback for every other backend.
type TemplateGenerator struct {
	now func() time.Time
}

// NewTemplateGenerator creates the deterministic generator.
func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{now: time.Now}
}

// Generate renders the subject and body for a recipient. It never
// fails.
func (g *TemplateGenerator) Generate(_ context.Context, req Request) models.EmailContent {
	now := g.now()
	month := monthNames[now.Month()-1]

	ident := req.Sigla
	if strings.TrimSpace(ident) == "" {
		ident = req.Name
	}

	subject := fmt.Sprintf("Relatórios %s - %s/%d", ident, month, now.Year())

	var b strings.Builder
	fmt.Fprintf(&b, "Prezados(as) %s,\n\n", greetingName(req.Name, ident))
	fmt.Fprintf(&b, "Segue o relatório %s referente a %s/%d.\n", req.PrimaryFile, month, now.Year())
	if len(req.Services) > 0 {
		b.WriteString("\nServiços contemplados:\n")
		for _, svc := range req.Services {
			fmt.Fprintf(&b, "  - %s\n", svc)
		}
	}
	b.WriteString("\nQualquer dúvida, permanecemos à disposição.\n\nAtenciosamente,")
	body := b.String()

	return models.EmailContent{
		Subject:  subject,
		Body:     body,
		BodyHTML: toHTML(body),
	}
}

func greetingName(name, fallback string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return fallback
}

func toHTML(body string) string {
	escaped := html.EscapeString(body)
	return "<p>" + strings.ReplaceAll(escaped, "\n", "<br>") + "</p>"
}
