package helpers

import (
	"fmt"
	"strings"

	"github.com/dzikrisyairozi/turborepo-fullstack-starter/pkg/mailer"
)

// NormalizeEmailJob lower-cases the template name and makes sure the
// recipient is available to templates as "email".
func NormalizeEmailJob(job *mailer.EmailJob) {
	job.Template = strings.ToLower(strings.TrimSpace(job.Template))
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["email"] = job.To
	}
}

// KnownTemplate reports whether the worker can render name.
func KnownTemplate(name string) bool {
	switch name {
	case mailer.TemplateWelcome, mailer.TemplateEmailChanged, mailer.TemplateRoleChanged, mailer.TemplateAccountDeleted:
		return true
	}
	return false
}
