package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PrepCategory classifies a prep question.
type PrepCategory string

const (
	CategorySTAR       PrepCategory = "STAR"
	CategoryBehavioral PrepCategory = "Behavioral"
	CategoryTechnical  PrepCategory = "Technical"
)

var PrepCategories = []PrepCategory{CategorySTAR, CategoryBehavioral, CategoryTechnical}

func ParseCategory(s string) (PrepCategory, error) {
	for _, c := range PrepCategories {
		if equalFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// PrepQuestion is one bank entry: one or more phrasings of a question with
// a prepared answer.
type PrepQuestion struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	Category  PrepCategory `json:"category"`
	Questions []string     `json:"questions"`
	Answer    string       `json:"answer"`
	Sources   []string     `json:"sources"`
}

func NewPrepQuestion(category PrepCategory, questions []string, answer string, sources []string) PrepQuestion {
	if sources == nil {
		sources = []string{}
	}
	return PrepQuestion{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Category:  category,
		Questions: questions,
		Answer:    answer,
		Sources:   sources,
	}
}

func (q PrepQuestion) RecordID() string { return q.ID }
