package export

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/scanboard/internal/models"
	"github.com/starford/scanboard/internal/storage"
)

// NotesDir is where WriteNotes puts note files under the data root.
const NotesDir = "notes"

// Frontmatter is the YAML header of an exported note.
type Frontmatter struct {
	Title    string   `yaml:"title,omitempty"`
	Tags     []string `yaml:"tags"`
	Scan     string   `yaml:"scan"`
	Note     string   `yaml:"note"`
	Captured string   `yaml:"captured"`
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// RenderNote renders one note as Markdown with YAML frontmatter.
func RenderNote(n models.Note, scan models.ScanResult) ([]byte, error) {
	fm := Frontmatter{
		Title:    n.Title,
		Tags:     n.Tags,
		Scan:     scan.ID,
		Note:     n.ID,
		Captured: scan.CapturedAt().UTC().Format(time.RFC3339),
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("export: encode frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(head)
	buf.WriteString("---\n")
	if n.Title != "" {
		buf.WriteString("# " + n.Title + "\n\n")
	}
	buf.WriteString(strings.TrimRight(n.Content, "\n") + "\n")
	return buf.Bytes(), nil
}

// ParseNote splits an exported note into frontmatter and body. Content
// without a frontmatter block is returned as body with a nil header.
func ParseNote(data []byte) (*Frontmatter, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	var fm Frontmatter
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		return nil, "", fmt.Errorf("export: decode frontmatter: %w", err)
	}
	return &fm, body, nil
}

// NoteFileName returns the file name a note is exported under.
func NoteFileName(n models.Note) string {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(n.Title), "-"), "-")
	if slug == "" {
		slug = "note"
	}
	id := n.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return slug + "-" + id + ".md"
}

// Markdown writes every note of scans as consecutive Markdown documents.
func Markdown(w io.Writer, scans []models.ScanResult) error {
	for _, s := range scans {
		for _, n := range s.Notes {
			doc, err := RenderNote(n, s)
			if err != nil {
				return err
			}
			if _, err := w.Write(append(doc, '\n')); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteNotes writes every note of scans under NotesDir through store and
// returns the paths written. Files whose content is unchanged are not
// rewritten.
func WriteNotes(store storage.Provider, scans []models.ScanResult) ([]string, error) {
	existing, err := store.List(NotesDir, ".md")
	if err != nil {
		return nil, err
	}
	sums := make(map[string]string, len(existing))
	for _, f := range existing {
		sums[f.Path] = f.Checksum
	}

	written := []string{}
	for _, s := range scans {
		for _, n := range s.Notes {
			doc, err := RenderNote(n, s)
			if err != nil {
				return written, err
			}
			p := path.Join(NotesDir, NoteFileName(n))
			if sums[p] == storage.Checksum(doc) {
				continue
			}
			if err := store.Write(p, doc); err != nil {
				return written, fmt.Errorf("export: write %s: %w", p, err)
			}
			written = append(written, p)
		}
	}
	return written, nil
}
