package dashboard

import (
	"embed"
	"io"
	"io/fs"

	template "github.com/goliatone/go-template"
)

// Renderer is the template contract the controller renders pages through.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

//go:embed templates/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer over the embedded
// dashboard page.
func NewTemplateRenderer() (Renderer, error) {
	return NewTemplateRendererFS(embeddedTemplates, "templates")
}

// NewTemplateRendererFS renders pongo2 templates from fsys rooted at
// baseDir, so deployments can restyle the page without rebuilding.
func NewTemplateRendererFS(fsys fs.FS, baseDir string) (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithBaseDir(baseDir),
		template.WithExtension(".html"),
	)
}
