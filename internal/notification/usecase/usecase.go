package usecase

import (
	"context"
	"html/template"

	"github.com/shandysiswandi/cenety/internal/pkg/clock"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type repoMail interface {
	SendAlert(ctx context.Context, to, subject, htmlBody, textBody string) error
}

type Usecase struct {
	repoMail  repoMail
	idemp     idempotency.Idempotency
	cfg       config.Config
	clock     clock.Clocker
	validator validator.Validator
	ins       instrument.Instrumentation
	html      *template.Template
}

type Dependency struct {
	RepoMail    repoMail
	Idempotency idempotency.Idempotency
	Config      config.Config
	Clock       clock.Clocker
	Validator   validator.Validator
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	return &Usecase{
		repoMail:  dep.RepoMail,
		idemp:     dep.Idempotency,
		cfg:       dep.Config,
		clock:     dep.Clock,
		validator: dep.Validator,
		ins:       dep.Instrument,
		html:      template.Must(template.New("alert").Option("missingkey=zero").Parse(alertHTML)),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) baseEmailTemplateData() map[string]any {
	company := s.cfg.GetString("app.company_name")
	if company == "" {
		company = "Cenety"
	}

	return map[string]any{
		"support_email": s.cfg.GetString("app.support_email"),
		"company_name":  company,
		"security_url":  s.cfg.GetString("app.web") + "/settings/security",
		"year":          s.clock.Now().Format("2006"),
	}
}

const alertHTML = `<!doctype html>
<html>
<body style="font-family:sans-serif">
<h2>{{.heading}}</h2>
<p>{{.summary}}</p>
<p>When: {{.occurred_at}}</p>
{{- if .details}}
<ul>{{range $k, $v := .details}}<li>{{$k}}: {{$v}}</li>{{end}}</ul>
{{- end}}
<p>If this was not you, secure your account at <a href="{{.security_url}}">{{.security_url}}</a>
{{- if .support_email}} and contact {{.support_email}}{{end}}.</p>
<p style="color:#888">&copy; {{.year}} {{.company_name}}</p>
</body>
</html>`
