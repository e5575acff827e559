package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/jera/internal/index"
	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/order"
)

// CreateTodoRequest is the request body for creating a todo.
type CreateTodoRequest struct {
	ID      string   `json:"id,omitempty" example:"3f0c9d6e-1b1a-4a43-9c55-8f1f7e9b7a10"`
	Title   string   `json:"title" example:"Buy milk"`
	Time    string   `json:"time,omitempty" example:"2026-10-17 09:30"`
	Content string   `json:"content" example:"<p>2L</p>"`
	Tags    []string `json:"tags" example:"todo"`
}

// Validate rejects requests that carry nothing to save.
func (r CreateTodoRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.When(r.Content == "", validation.Required.Error("title or content is required"))),
	)
}

func (r CreateTodoRequest) draft() models.TempTodo {
	return models.TempTodo{ID: r.ID, Title: r.Title, Time: r.Time, Content: r.Content, Tags: r.Tags}
}

// DeleteTodosRequest is the request body for a batch delete.
type DeleteTodosRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// Validate requires at least one id.
func (r DeleteTodosRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.IDs, validation.Required, validation.Each(validation.Required)),
	)
}

// ReorderRequest moves one element either by position or by id.
type ReorderRequest struct {
	From   *int   `json:"from,omitempty" example:"0"`
	To     *int   `json:"to,omitempty" example:"2"`
	FromID string `json:"fromId,omitempty"`
	ToID   string `json:"toId,omitempty"`
}

// Validate requires exactly one complete pair.
func (r ReorderRequest) Validate() error {
	byIndex := r.From != nil || r.To != nil
	return validation.ValidateStruct(&r,
		validation.Field(&r.From, validation.When(byIndex, validation.NotNil)),
		validation.Field(&r.To, validation.When(byIndex, validation.NotNil)),
		validation.Field(&r.FromID, validation.When(!byIndex, validation.Required).Else(validation.Empty)),
		validation.Field(&r.ToID, validation.When(!byIndex, validation.Required).Else(validation.Empty)),
	)
}

// Move converts a validated request into an order.Move.
func (r ReorderRequest) Move() order.Move {
	if r.From != nil {
		return order.ByIndex(*r.From, *r.To)
	}
	return order.ByID(r.FromID, r.ToID)
}

// SelectionRequest selects or deselects every visible todo.
type SelectionRequest struct {
	Status bool `json:"status"`
}

// SaveItemRequest is the board shorthand for a new todo.
type SaveItemRequest struct {
	Title string   `json:"title" example:"Ship it"`
	Tags  []string `json:"tags" example:"doing"`
}

// Validate requires a title.
func (r SaveItemRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// TodoListResponse is the filtered list with the filter that produced it.
type TodoListResponse struct {
	Todos    []models.TodoItem `json:"todos" validate:"required"`
	Filter   string            `json:"filter" example:"*"`
	Selected []string          `json:"selected"`
}

// SelectionResponse lists the selected ids after a toggle.
type SelectionResponse struct {
	Selected []string `json:"selected"`
}

// TagsResponse wraps the tag catalog.
type TagsResponse struct {
	Tags []models.Tag `json:"tags" validate:"required"`
}

// BoardResponse wraps the board columns.
type BoardResponse struct {
	Columns []models.Column `json:"columns" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}
