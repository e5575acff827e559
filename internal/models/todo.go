// Package models defines the domain types for Jera.
package models

import "time"

// NoTag is the reserved tag id for unfiled todos. It never shows up in tag selectors.
const NoTag = "NoTag"

// AllTags is the filter value that matches every todo.
const AllTags = "*"

// Todo is the full record: list metadata joined with stored content.
type Todo struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Time          string   `json:"time"`
	Content       string   `json:"content"`
	Tags          []string `json:"tags"`
	IsCloudSynced bool     `json:"isCloudSynced"`
	IsSelected    bool     `json:"isSelected"`
	UID           string   `json:"uid"`
}

// Item returns the list projection of t (everything but content).
func (t Todo) Item() TodoItem {
	return TodoItem{
		ID:            t.ID,
		Title:         t.Title,
		Time:          t.Time,
		Tags:          append([]string(nil), t.Tags...),
		IsCloudSynced: t.IsCloudSynced,
		IsSelected:    t.IsSelected,
		UID:           t.UID,
	}
}

// TodoItem is the lightweight entry held in the ordered list.
// Content lives in the storage collaborator, keyed by ID.
type TodoItem struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Time          string   `json:"time"`
	Tags          []string `json:"tags"`
	IsCloudSynced bool     `json:"isCloudSynced"`
	IsSelected    bool     `json:"isSelected"`
	UID           string   `json:"uid"`
}

// Tag returns the effective tag of the item. Only the first entry counts.
func (t TodoItem) Tag() string {
	if len(t.Tags) == 0 {
		return NoTag
	}
	return t.Tags[0]
}

// Matches reports whether the item is visible under the given filter.
func (t TodoItem) Matches(filter string) bool {
	return filter == "" || filter == AllTags || t.Tag() == filter
}

// WithContent joins the item with its content.
func (t TodoItem) WithContent(content string) Todo {
	return Todo{
		ID:            t.ID,
		Title:         t.Title,
		Time:          t.Time,
		Content:       content,
		Tags:          append([]string(nil), t.Tags...),
		IsCloudSynced: t.IsCloudSynced,
		IsSelected:    t.IsSelected,
		UID:           t.UID,
	}
}

// TempTodo is the draft buffer open in the editor. An empty ID means the
// draft has never been saved.
type TempTodo struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Time    string   `json:"time"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// IsBlank reports whether the draft carries nothing worth saving.
func (d TempTodo) IsBlank() bool {
	return isBlank(d.Title) && isBlank(d.Content)
}

// TodoPatch is a partial update. It has no ID or UID field, so neither can change.
type TodoPatch struct {
	Title         *string   `json:"title,omitempty"`
	Time          *string   `json:"time,omitempty"`
	Content       *string   `json:"content,omitempty"`
	Tags          *[]string `json:"tags,omitempty"`
	IsCloudSynced *bool     `json:"isCloudSynced,omitempty"`
	IsSelected    *bool     `json:"isSelected,omitempty"`
}

// SelectionOnly reports whether the patch touches nothing but IsSelected.
func (p TodoPatch) SelectionOnly() bool {
	return p.Title == nil && p.Time == nil && p.Content == nil && p.Tags == nil && p.IsCloudSynced == nil
}

// Apply merges the metadata fields of p into item. Content is handled by the caller.
func (p TodoPatch) Apply(item *TodoItem) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Time != nil {
		item.Time = *p.Time
	}
	if p.Tags != nil {
		item.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.IsCloudSynced != nil {
		item.IsCloudSynced = *p.IsCloudSynced
	}
	if p.IsSelected != nil {
		item.IsSelected = *p.IsSelected
	}
}

// DraftPatch is a partial update of the draft buffer.
type DraftPatch struct {
	Title   *string   `json:"title,omitempty"`
	Time    *string   `json:"time,omitempty"`
	Content *string   `json:"content,omitempty"`
	Tags    *[]string `json:"tags,omitempty"`
}

// Apply merges p into d.
func (p DraftPatch) Apply(d *TempTodo) {
	if p.Title != nil {
		d.Title = *p.Title
	}
	if p.Time != nil {
		d.Time = *p.Time
	}
	if p.Content != nil {
		d.Content = *p.Content
	}
	if p.Tags != nil {
		d.Tags = append([]string(nil), (*p.Tags)...)
	}
}

func isBlank(s string) bool {
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r':
		default:
			return false
		}
	}
	return true
}

// ContentMeta describes one stored content entry.
type ContentMeta struct {
	ID        string    `json:"id"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
