package adapter

import (
	"embed"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"github.com/kapu/ai-demo-hub/internal/domain"
)

//go:embed templates/*.tmpl
var replyTemplateFS embed.FS

var errRepliesUnavailable = errors.New("reply templates unavailable")

// replyFuncs are the helpers the chat reply templates call.
func replyFuncs(prefix string) template.FuncMap {
	return template.FuncMap{
		"cmd": func(name string) string { return prefix + name },
		"verdict": func(e domain.Evaluation) string {
			if e == domain.EvaluationApproved {
				return "✅"
			}
			return "❌"
		},
		"mood": func(s domain.Sentiment) string {
			if s == domain.SentimentPositive {
				return "😊"
			}
			return "🙏"
		},
	}
}

func parseReplyTemplates(prefix string) (*template.Template, error) {
	set, err := template.New("replies").
		Funcs(replyFuncs(prefix)).
		Option("missingkey=error").
		ParseFS(replyTemplateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse reply templates: %w", err)
	}
	return set, nil
}

func executeReply(set *template.Template, name string, data any) (string, error) {
	if set == nil {
		return "", errRepliesUnavailable
	}

	var sb strings.Builder
	if err := set.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("reply %s: %w", name, err)
	}
	return strings.TrimRight(sb.String(), "\n"), nil
}
