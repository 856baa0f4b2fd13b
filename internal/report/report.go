// Package report exports a project as a markdown document with a YAML
// frontmatter block. The frontmatter carries a checksum of the body so an
// existing export can be checked against the live project.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kingrea/pm-portal/internal/catalog"
	"github.com/kingrea/pm-portal/internal/project"
)

// State describes an export on disk relative to the live project.
type State string

const (
	StateMissing State = "missing"
	StateCurrent State = "current"
	StateStale   State = "stale"
	StateInvalid State = "invalid"
)

// CheckResult is the outcome of Check.
type CheckResult struct {
	Path     string
	State    State
	Metadata *Metadata
	Err      error
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// FileName is the default export name for a project, e.g. "1-mobile-app.md".
func FileName(p project.Project) string {
	slug := strings.Trim(slugPattern.ReplaceAllString(strings.ToLower(p.Name), "-"), "-")
	if slug == "" {
		slug = "project"
	}
	return fmt.Sprintf("%d-%s.md", p.ID, slug)
}

// Render builds the markdown body for a project.
func Render(p project.Project) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n", p.Name, p.Description)
	fmt.Fprintf(&b, "Progress: %s\n\n## Sections\n\n", p.Progress())
	for _, e := range catalog.All() {
		sec, _ := p.Section(e.ID)
		mark := " "
		if sec.Completed {
			mark = "x"
		}
		fmt.Fprintf(&b, "- [%s] %s\n", mark, e.Title)
	}
	for _, e := range catalog.All() {
		sec, _ := p.Section(e.ID)
		if sec.Data == nil {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", e.Title)
		writeData(&b, sec.Data)
	}
	return []byte(b.String())
}

func writeData(b *strings.Builder, data project.SectionData) {
	switch d := data.(type) {
	case project.ProductDiscoveryData:
		writeField(b, "Problem", d.Problem)
		writeField(b, "Target market", d.TargetMarket)
		writeField(b, "Value proposition", d.ValueProposition)
		writeList(b, "Competitors", d.Competitors)
	case project.CustomerDiscoveryData:
		writeList(b, "Personas", d.Personas)
		if d.Interviews > 0 {
			fmt.Fprintf(b, "**Interviews:** %d\n", d.Interviews)
		}
		writeList(b, "Insights", d.Insights)
	case project.UserJourneyData:
		for _, st := range d.Stages {
			fmt.Fprintf(b, "### %s\n\n", st.Name)
			writeList(b, "Touchpoints", st.Touchpoints)
			writeList(b, "Pain points", st.PainPoints)
		}
	case project.TechStackData:
		writeList(b, "Frontend", d.Frontend)
		writeList(b, "Backend", d.Backend)
		writeList(b, "Data", d.Data)
		writeList(b, "Infrastructure", d.Infrastructure)
	case project.DevScheduleData:
		b.WriteString("| Milestone | Due | Done |\n| --- | --- | --- |\n")
		for _, m := range d.Milestones {
			done := "no"
			if m.Done {
				done = "yes"
			}
			fmt.Fprintf(b, "| %s | %s | %s |\n", m.Name, m.Due, done)
		}
	}
}

func writeField(b *strings.Builder, label, value string) {
	if value != "" {
		fmt.Fprintf(b, "**%s:** %s\n", label, value)
	}
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "**%s:**\n", label)
	for _, v := range values {
		fmt.Fprintf(b, "- %s\n", v)
	}
}

// Checksum is the hex sha256 of a rendered body.
func Checksum(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

// Document renders the full export for p.
func Document(p project.Project, exportedAt time.Time) ([]byte, error) {
	body := Render(p)
	meta := Metadata{
		ProjectID:  p.ID,
		Name:       p.Name,
		Progress:   p.Progress(),
		ExportedAt: exportedAt,
		Checksum:   Checksum(body),
	}
	for _, sec := range p.Sections {
		if sec.Completed {
			meta.Completed = append(meta.Completed, int(sec.ID))
		}
	}
	return WriteFrontMatter(meta, body)
}

// Write exports p to path, creating parent directories.
func Write(path string, p project.Project, exportedAt time.Time) error {
	content, err := Document(p, exportedAt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, content, 0o644)
}

// Check compares the export at path with the live project.
func Check(path string, p project.Project) (CheckResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return CheckResult{Path: path, State: StateMissing}, nil
		}
		return CheckResult{Path: path, State: StateInvalid, Err: err}, err
	}
	meta, _, err := ParseFrontMatter(data)
	if err != nil {
		return CheckResult{Path: path, State: StateInvalid, Err: err}, nil
	}
	if meta.ProjectID != p.ID {
		err := fmt.Errorf("report: export belongs to project %d, not %d", meta.ProjectID, p.ID)
		return CheckResult{Path: path, State: StateInvalid, Metadata: &meta, Err: err}, nil
	}
	state := StateCurrent
	if meta.Checksum != Checksum(Render(p)) {
		state = StateStale
	}
	return CheckResult{Path: path, State: state, Metadata: &meta}, nil
}
