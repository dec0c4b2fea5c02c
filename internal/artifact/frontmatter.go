package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/workflow"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("artifact: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("artifact: malformed frontmatter")
)

// Metadata is the frontmatter block of an exported blueprint.
type Metadata struct {
	DocumentID    string
	SchemaVersion int
	Stage         workflow.Stage
	Created       time.Time
	Updated       time.Time
}

// MetadataFor describes doc.
func MetadataFor(doc *blueprint.Document) Metadata {
	return Metadata{
		DocumentID:    doc.ID,
		SchemaVersion: doc.SchemaVersion,
		Stage:         workflow.DetectStage(doc),
		Created:       doc.Timestamps.Created,
		Updated:       doc.Timestamps.Updated,
	}
}

// ParseFrontMatter extracts the metadata block and body from a document that starts
// with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := normalizeNewlines(content)
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope blueprintEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("artifact: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, bytes.TrimLeft(parts[1], "\n"), nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.DocumentID == "" {
		return nil, fmt.Errorf("artifact: metadata missing document id")
	}
	envelope := blueprintEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("artifact: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

type blueprintEnvelope struct {
	Blueprint blueprintMetadata `yaml:"blueprint"`
}

type blueprintMetadata struct {
	ID            string `yaml:"id"`
	SchemaVersion int    `yaml:"schema_version"`
	Stage         string `yaml:"stage"`
	Created       string `yaml:"created"`
	Updated       string `yaml:"updated"`
}

func (e blueprintEnvelope) toMetadata() (Metadata, error) {
	if e.Blueprint.ID == "" || e.Blueprint.SchemaVersion <= 0 {
		return Metadata{}, ErrMalformedFrontMatter
	}
	stage, err := workflow.ParseStage(e.Blueprint.Stage)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	created, err := parseTime(e.Blueprint.Created)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse created timestamp: %w", err)
	}
	updated, err := parseTime(e.Blueprint.Updated)
	if err != nil {
		return Metadata{}, fmt.Errorf("artifact: parse updated timestamp: %w", err)
	}
	return Metadata{
		DocumentID:    e.Blueprint.ID,
		SchemaVersion: e.Blueprint.SchemaVersion,
		Stage:         stage,
		Created:       created,
		Updated:       updated,
	}, nil
}

func (e *blueprintEnvelope) fromMetadata(meta Metadata) {
	e.Blueprint.ID = meta.DocumentID
	e.Blueprint.SchemaVersion = meta.SchemaVersion
	e.Blueprint.Stage = string(meta.Stage)
	e.Blueprint.Created = meta.Created.UTC().Format(timeLayout)
	e.Blueprint.Updated = meta.Updated.UTC().Format(timeLayout)
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("artifact: empty timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
