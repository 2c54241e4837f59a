package models

import (
	"fmt"
	"strings"
)

// ItemType tags a toolbox group.
type ItemType string

const (
	ItemProjects       ItemType = "projects"
	ItemSkills         ItemType = "skills"
	ItemEducation      ItemType = "education"
	ItemCertificates   ItemType = "certificates"
	ItemBootcamps      ItemType = "bootcamps"
	ItemVolunteering   ItemType = "volunteering"
	ItemWorkExperience ItemType = "workExperience"
	ItemCoursework     ItemType = "coursework"
)

var ItemTypes = []ItemType{
	ItemProjects, ItemSkills, ItemEducation, ItemCertificates,
	ItemBootcamps, ItemVolunteering, ItemWorkExperience, ItemCoursework,
}

// itemTypeAliases maps the section names older tracker exports used.
var itemTypeAliases = map[string]ItemType{
	"certificates & awards": ItemCertificates,
	"experience":            ItemWorkExperience,
}

func ParseItemType(s string) (ItemType, error) {
	if it, ok := itemTypeAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return it, nil
	}
	for _, it := range ItemTypes {
		if equalFold(string(it), s) {
			return it, nil
		}
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// ToolboxGroup is the list of snippets of one type. It is stored under its
// type tag, one record per type.
type ToolboxGroup struct {
	Type  ItemType `json:"type"`
	Items []string `json:"items"`
}

func (g ToolboxGroup) RecordID() string { return string(g.Type) }

func equalFold(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
