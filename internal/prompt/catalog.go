package prompt

import (
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"text/template"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

type TemplateName string

const (
	TemplateSentimentClassify TemplateName = "sentiment_classify.tmpl"
	TemplateSentimentReply    TemplateName = "sentiment_reply.tmpl"
	TemplateEssay             TemplateName = "essay.tmpl"
	TemplateFeedback          TemplateName = "feedback.tmpl"
	TemplateOverall           TemplateName = "overall.tmpl"
	TemplateVideoSummary      TemplateName = "video_summary.tmpl"
)

var templateNames = []TemplateName{
	TemplateSentimentClassify,
	TemplateSentimentReply,
	TemplateEssay,
	TemplateFeedback,
	TemplateOverall,
	TemplateVideoSummary,
}

var ErrUnknownTemplate = errors.New("unknown prompt template")

var promptFuncs = template.FuncMap{
	"trim":  strings.TrimSpace,
	"quote": func(s string) string { return strconv.Quote(strings.TrimSpace(s)) },
}

// Catalog is the parsed set of demo prompts. Safe for concurrent use.
type Catalog struct {
	set *template.Template
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
	defaultCatalogErr  error
)

// NewCatalog parses every embedded prompt and fails if one of the known templates is missing.
func NewCatalog() (*Catalog, error) {
	set, err := template.New("prompts").
		Funcs(promptFuncs).
		Option("missingkey=error").
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}

	for _, name := range templateNames {
		if set.Lookup(string(name)) == nil {
			return nil, fmt.Errorf("%w: %s not embedded", ErrUnknownTemplate, name)
		}
	}
	return &Catalog{set: set}, nil
}

func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		defaultCatalog, defaultCatalogErr = NewCatalog()
	})
	return defaultCatalog, defaultCatalogErr
}

// Render executes one prompt and trims surrounding whitespace.
func (c *Catalog) Render(name TemplateName, data any) (string, error) {
	tmpl := c.set.Lookup(string(name))
	if tmpl == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}
