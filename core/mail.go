package core

import (
	"bytes"
	"io/fs"
	"log"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"
)

var (
	templates     map[string]*texttmpl.Template
	templateFS    fs.FS
	tmplInit      sync.Once
	templateDir   = "templates/email"
	templateBase  = "_base.txt"
)

type (
	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
	}

	// ContextData is what every email template is executed against.
	ContextData struct {
		AppName         string
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently.
		SendMessages(messages ...*EmailMessage)
	}
)

// SetTemplateFS points email rendering at the embedded template files.
// Called once from main before any message is rendered.
func SetTemplateFS(fsys fs.FS) {
	templateFS = fsys
}

func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	tmplInit.Do(parseTemplates)

	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return nil
	}
	var buff bytes.Buffer
	if err := tmpl.Execute(&buff, ContextData{
		AppName:         Conf.AppName,
		FrontendBaseURL: Conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}); err != nil {
		return err
	}
	m.TextContent = buff.String()
	return nil
}

func (m *EmailMessage) HasRecipients() bool  { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool     { return m.TextContent != "" }
func (m *EmailMessage) HasAttachments() bool { return len(m.Attachments) > 0 }

func parseTemplates() {
	templates = make(map[string]*texttmpl.Template)
	if templateFS == nil {
		return
	}

	entries, err := fs.ReadDir(templateFS, templateDir)
	if err != nil {
		log.Printf("core.parseTemplates: %v", err)
		return
	}
	for _, entry := range entries {
		fname := entry.Name()
		if strings.HasPrefix(fname, "_") || !strings.HasSuffix(fname, ".txt") {
			continue
		}
		tmpl, err := texttmpl.ParseFS(templateFS, path.Join(templateDir, templateBase), path.Join(templateDir, fname))
		if err != nil {
			log.Printf("core.parseTemplates: %v", err)
			continue
		}
		if Conf.Debug || Conf.TestMode {
			tmpl = tmpl.Option("missingkey=error")
		}
		templates[strings.TrimSuffix(fname, ".txt")] = tmpl
	}
}
