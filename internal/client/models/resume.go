package models

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// HeaderSection is rendered first when a resume is compiled from sections.
const HeaderSection = "Header"

// Resume holds either flat markdown Content or a Sections map. When
// Sections is non-empty it is authoritative and Content is derived.
type Resume struct {
	ID       string            `json:"id"`
	Name     string            `json:"name"`
	Tags     []string          `json:"tags"`
	Content  string            `json:"content"`
	Sections map[string]string `json:"sections,omitempty"`
}

func NewResume(name string, tags []string, content string) Resume {
	if tags == nil {
		tags = []string{}
	}
	return Resume{ID: uuid.NewString(), Name: name, Tags: tags, Content: content}
}

func (r Resume) RecordID() string { return r.ID }

// Markdown returns the resume text: the compiled sections when present,
// otherwise the flat content.
func (r Resume) Markdown() string {
	if len(r.Sections) == 0 {
		return r.Content
	}

	var b strings.Builder
	if h, ok := r.Sections[HeaderSection]; ok {
		b.WriteString(h)
		b.WriteString("\n\n")
	}

	titles := make([]string, 0, len(r.Sections))
	for title := range r.Sections {
		if title != HeaderSection {
			titles = append(titles, title)
		}
	}
	sort.Strings(titles)

	for _, title := range titles {
		b.WriteString("## ")
		b.WriteString(title)
		b.WriteString("\n\n")
		b.WriteString(r.Sections[title])
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// SetSection stores body under title and refreshes Content.
func (r *Resume) SetSection(title, body string) {
	if r.Sections == nil {
		r.Sections = make(map[string]string)
	}
	r.Sections[title] = body
	r.Content = r.Markdown()
}
