package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/kingrea/blueprint/internal/blueprint"
)

// Format selects an export encoding.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat accepts md, markdown or json.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("artifact: unknown export format %q", value)
}

// Render encodes doc in format.
func Render(doc blueprint.Document, format Format) ([]byte, error) {
	switch format {
	case FormatMarkdown:
		return RenderMarkdown(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("artifact: encode json: %w", err)
		}
		return append(data, '\n'), nil
	}
	return nil, fmt.Errorf("artifact: unknown export format %q", format)
}

// RenderTerminal styles markdown for a terminal of the given width.
func RenderTerminal(markdown []byte, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("artifact: terminal renderer: %w", err)
	}
	_, body, err := ParseFrontMatter(markdown)
	if err != nil {
		body = markdown
	}
	out, err := renderer.Render(string(body))
	if err != nil {
		return "", fmt.Errorf("artifact: render markdown: %w", err)
	}
	return out, nil
}

// Exporter writes rendered blueprints into a directory.
type Exporter struct {
	dir string
}

// NewExporter returns an exporter rooted at dir.
func NewExporter(dir string) *Exporter {
	return &Exporter{dir: dir}
}

// Path returns the file an export of id in format is written to.
func (e *Exporter) Path(id string, format Format) string {
	return filepath.Join(e.dir, id+"."+string(format))
}

// Write renders doc and writes it atomically. It returns the file path.
func (e *Exporter) Write(doc blueprint.Document, format Format) (string, error) {
	if strings.TrimSpace(doc.ID) == "" || strings.ContainsAny(doc.ID, `/\`) {
		return "", fmt.Errorf("artifact: invalid document id %q", doc.ID)
	}
	data, err := Render(doc, format)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("artifact: ensure export dir: %w", err)
	}
	path := e.Path(doc.ID, format)
	tmp, err := os.CreateTemp(e.dir, "."+doc.ID+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("artifact: create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", fmt.Errorf("artifact: write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("artifact: close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("artifact: move export: %w", err)
	}
	return path, nil
}
