// internal/workers/communication/send-notification/templates.go
package sendnotification

import (
	"bytes"
	"fmt"
	"text/template"

	"carbon-workers/internal/models"
)

// notificationTemplates maps notification types to their message templates.
// Bodies are Go templates rendered against the job payload.
var notificationTemplates = map[string]models.NotificationTemplate{
	"evaluation_complete": {
		ID:      "tmpl-evaluation-complete",
		Type:    "evaluation_complete",
		Subject: "Eligibility assessment ready for {{.projectName}}",
		Body:    "Your project {{.projectName}} scored {{.confidenceScore}}/100 ({{.confidenceLevel}} confidence). Log in to review the full assessment.",
		HTMLBody: "<p>Your project <strong>{{.projectName}}</strong> scored {{.confidenceScore}}/100 " +
			"({{.confidenceLevel}} confidence).</p><p>Log in to review the full assessment.</p>",
		Version: "1",
	},
	"registry_submitted": {
		ID:      "tmpl-registry-submitted",
		Type:    "registry_submitted",
		Subject: "Registration dossier submitted for {{.projectName}}",
		Body:    "The registration dossier for {{.projectName}} was submitted to {{.registry}} (submission {{.submissionId}}).",
		HTMLBody: "<p>The registration dossier for <strong>{{.projectName}}</strong> was submitted to " +
			"{{.registry}} (submission {{.submissionId}}).</p>",
		Version: "1",
	},
	"mandate_match": {
		ID:      "tmpl-mandate-match",
		Type:    "mandate_match",
		Subject: "New project matches your mandate",
		Body:    "Project {{.projectName}} ({{.technology}}, {{.country}}) matches your purchase mandate with a fit score of {{.matchScore}}.",
		HTMLBody: "<p>Project <strong>{{.projectName}}</strong> ({{.technology}}, {{.country}}) matches " +
			"your purchase mandate with a fit score of {{.matchScore}}.</p>",
		Version: "1",
	},
}

func renderTemplate(text string, payload map[string]interface{}) (string, error) {
	tmpl, err := template.New("notification").Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, payload); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}
