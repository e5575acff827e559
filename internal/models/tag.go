package models

// Tag is both a filter facet and a board column.
type Tag struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description,omitempty" yaml:"description"`
	IsHidden    bool   `json:"isHidden" yaml:"hidden"`
	Icon        string `json:"icon" yaml:"icon"`
}

// Column is one board column with its todos in list order.
type Column struct {
	Tag   Tag        `json:"tag"`
	Items []TodoItem `json:"items"`
}

// DefaultTags is the catalog seeded when neither the index nor the config provide one.
func DefaultTags() []Tag {
	return []Tag{
		{ID: NoTag, Title: "Unfiled", Description: "Todos without a board", IsHidden: true, Icon: "inbox"},
		{ID: "todo", Title: "To do", Description: "Planned but not started", Icon: "circle"},
		{ID: "doing", Title: "In progress", Description: "Being worked on", Icon: "clock"},
		{ID: "done", Title: "Done", Description: "Finished", Icon: "check"},
	}
}
