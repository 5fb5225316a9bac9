// Package book defines the chapter records persisted by the chapter store and
// the rendered page model consumed by renderers.
package book

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DefaultIcon is used when a chapter is saved without an icon.
const DefaultIcon = "🌿"

// Untitled stands in for a missing title when a draft is previewed.
const Untitled = "Untitled chapter"

// IDPrefix prefixes generated chapter identifiers.
const IDPrefix = "admin_"

// ErrEmptyTitle is returned when a draft is saved without a title.
var ErrEmptyTitle = errors.New("chapter title is required")

// Chapter is an authored chapter as stored in the remote table or the local
// fallback. Timestamps are Unix milliseconds.
type Chapter struct {
	ID        string `json:"id" yaml:"id"`
	Number    int    `json:"number" yaml:"number"`
	Title     string `json:"title" yaml:"title"`
	Subtitle  string `json:"subtitle" yaml:"subtitle"`
	Icon      string `json:"icon" yaml:"icon"`
	Body      string `json:"body" yaml:"body"`
	CreatedAt int64  `json:"created_at" yaml:"created_at"`
	UpdatedAt int64  `json:"updated_at" yaml:"updated_at"`
}

// Draft is the editable part of a chapter.
type Draft struct {
	Title    string `yaml:"title"`
	Subtitle string `yaml:"subtitle,omitempty"`
	Icon     string `yaml:"icon,omitempty"`
	Body     string `yaml:"body"`
	Number   int    `yaml:"number,omitempty"` // requested position, 0 = append
}

// Apply turns the draft into a chapter ready to be saved.
//
// When existing is nil a new chapter is created with a generated ID and the
// given next number (or the draft's own number if set). Otherwise the
// existing chapter keeps its ID, number and creation time.
func (d Draft) Apply(existing *Chapter, next int, now time.Time) (Chapter, error) {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return Chapter{}, ErrEmptyTitle
	}

	icon := d.Icon
	if icon == "" {
		icon = DefaultIcon
	}

	ms := now.UnixMilli()
	ch := Chapter{
		Title:     title,
		Subtitle:  strings.TrimSpace(d.Subtitle),
		Icon:      icon,
		Body:      d.Body,
		UpdatedAt: ms,
	}

	if existing != nil {
		ch.ID = existing.ID
		ch.Number = existing.Number
		ch.CreatedAt = existing.CreatedAt
		if d.Icon == "" && existing.Icon != "" {
			ch.Icon = existing.Icon
		}
		return ch, nil
	}

	ch.ID = NewID(now)
	ch.Number = next
	if d.Number > 0 {
		ch.Number = d.Number
	}
	ch.CreatedAt = ms
	return ch, nil
}

// Preview returns the draft as a chapter for display only. Unlike Apply it
// accepts unfinished drafts: a missing title shows as Untitled.
func (d Draft) Preview() Chapter {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = Untitled
	}
	icon := d.Icon
	if icon == "" {
		icon = DefaultIcon
	}
	return Chapter{
		Number:   d.Number,
		Title:    title,
		Subtitle: strings.TrimSpace(d.Subtitle),
		Icon:     icon,
		Body:     d.Body,
	}
}

// NewID returns a chapter identifier derived from the creation time.
func NewID(now time.Time) string {
	return fmt.Sprintf("%s%d", IDPrefix, now.UnixMilli())
}

// NextNumber returns the number for a chapter appended after chapters.
func NextNumber(chapters []Chapter) int {
	next := 1
	for _, ch := range chapters {
		if ch.Number >= next {
			next = ch.Number + 1
		}
	}
	return next
}

// Sort orders chapters by number, then by ID.
func Sort(chapters []Chapter) {
	sort.SliceStable(chapters, func(i, j int) bool {
		if chapters[i].Number != chapters[j].Number {
			return chapters[i].Number < chapters[j].Number
		}
		return chapters[i].ID < chapters[j].ID
	})
}

// Find returns the chapter with the given ID.
func Find(chapters []Chapter, id string) (*Chapter, bool) {
	for i := range chapters {
		if chapters[i].ID == id {
			return &chapters[i], true
		}
	}
	return nil, false
}
