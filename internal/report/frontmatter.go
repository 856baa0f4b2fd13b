package report

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("report: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("report: malformed frontmatter")
)

// Metadata is the frontmatter block of an exported report.
type Metadata struct {
	ProjectID  int
	Name       string
	Progress   string
	Completed  []int
	ExportedAt time.Time
	Checksum   string
}

var (
	fence    = []byte("---\n")
	closeTag = []byte("\n---\n")
)

// ParseFrontMatter splits an export into its metadata and markdown body.
// CRLF line endings are accepted.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	doc := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	rest, ok := bytes.CutPrefix(doc, fence)
	if !ok {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	head, body, ok := bytes.Cut(rest, closeTag)
	if !ok {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var env envelope
	if err := yaml.Unmarshal(head, &env); err != nil {
		return Metadata{}, nil, fmt.Errorf("report: parse frontmatter: %w", err)
	}
	pm := env.Portal
	if pm.Project <= 0 || pm.Checksum == "" || pm.Exported.IsZero() {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	meta := Metadata{
		ProjectID:  pm.Project,
		Name:       pm.Name,
		Progress:   pm.Progress,
		Completed:  pm.Completed,
		ExportedAt: pm.Exported.UTC(),
		Checksum:   pm.Checksum,
	}
	return meta, bytes.TrimPrefix(body, []byte("\n")), nil
}

// WriteFrontMatter prepends the metadata block to body.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.ProjectID <= 0 {
		return nil, fmt.Errorf("report: metadata missing project id")
	}
	head, err := yaml.Marshal(envelope{Portal: portalMetadata{
		Project:   meta.ProjectID,
		Name:      meta.Name,
		Progress:  meta.Progress,
		Completed: meta.Completed,
		Exported:  meta.ExportedAt.UTC().Truncate(time.Second),
		Checksum:  meta.Checksum,
	}})
	if err != nil {
		return nil, fmt.Errorf("report: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.Write(fence)
	buf.Write(head)
	buf.Write(fence)
	buf.WriteByte('\n')
	buf.Write(body)
	return buf.Bytes(), nil
}

// envelope namespaces the block so foreign frontmatter is rejected.
type envelope struct {
	Portal portalMetadata `yaml:"pmportal"`
}

type portalMetadata struct {
	Project   int       `yaml:"project"`
	Name      string    `yaml:"name"`
	Progress  string    `yaml:"progress"`
	Completed []int     `yaml:"completed,flow,omitempty"`
	Exported  time.Time `yaml:"exported"`
	Checksum  string    `yaml:"checksum"`
}
