package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("empty title")
	ErrInvalidPriority = errors.New("invalid priority")
)

// Priority is carried with an item but never interpreted by the list itself.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority accepts low, medium or high in any case.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	case "":
		return PriorityMedium, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
}

// Item is the domain model for a todo entry. ID is the only lookup key.
type Item struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Done      bool      `json:"done"`
	Priority  Priority  `json:"priority"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewItem builds a pending item with a fresh identity.
func NewItem(title string, priority Priority, category string) (Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Item{}, ErrEmptyTitle
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return Item{}, err
	}
	return Item{
		ID:        uuid.New(),
		Title:     title,
		Priority:  priority,
		Category:  strings.TrimSpace(category),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Toggled returns a copy with the completion flag flipped.
func (it Item) Toggled() Item {
	it.Done = !it.Done
	return it
}
