// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the todo store to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/jera/internal/models"
	"github.com/starford/jera/internal/todostore"
)

// FormatURI is the resource URI of the todo format contract.
const FormatURI = "jera://todo-format"

// Server wraps the MCP server with Jera tools.
type Server struct {
	mcp   *server.MCPServer
	store *todostore.Store
}

// New creates a new MCP server with all Jera tools registered.
func New(store *todostore.Store, version string) *Server {
	s := &Server{store: store}

	s.mcp = server.NewMCPServer(
		"Jera",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_todos",
		mcp.WithDescription("List todos in board order, optionally only those carrying one tag."),
		mcp.WithString("tag", mcp.Description("Tag id to filter by (empty or * for all)")),
	), s.listTodos)

	s.mcp.AddTool(mcp.NewTool("read_todo",
		mcp.WithDescription("Read one todo including its content."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
	), s.readTodo)

	s.mcp.AddTool(mcp.NewTool("create_todo",
		mcp.WithDescription("Create a todo at the end of the list. "+
			"Read the contract first via get_todo_contract or the "+FormatURI+" resource."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Short title")),
		mcp.WithString("content", mcp.Description("Body text")),
		mcp.WithString("tag", mcp.Description("Tag id from list_tags; empty leaves the todo unfiled")),
	), s.createTodo)

	s.mcp.AddTool(mcp.NewTool("update_todo_content",
		mcp.WithDescription("Replace the content of a todo, and optionally its title."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Todo id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("New body text")),
		mcp.WithString("title", mcp.Description("New title (unchanged when empty)")),
	), s.updateTodoContent)

	s.mcp.AddTool(mcp.NewTool("delete_todos",
		mcp.WithDescription("Delete todos. Either every listed todo is deleted or none is."),
		mcp.WithString("ids", mcp.Required(), mcp.Description("Comma-separated todo ids")),
	), s.deleteTodos)

	s.mcp.AddTool(mcp.NewTool("search_todos",
		mcp.WithDescription("Full-text search through todo titles and content."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchTodos)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the tags a todo can carry, in board order."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("get_todo_contract",
		mcp.WithDescription("Returns the Jera todo format contract. "+
			"Call this before creating or updating todos."),
	), s.getTodoContract)

	s.mcp.AddResource(
		mcp.NewResource(FormatURI, "Todo Format Contract",
			mcp.WithResourceDescription("How todos, tags and content are structured in Jera."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// HTTPHandler returns the streamable HTTP transport for mounting on a router.
func (s *Server) HTTPHandler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listTodos(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag := req.GetString("tag", "")
	items := []models.TodoItem{}
	for _, t := range s.store.Todos() {
		if t.Matches(tag) {
			items = append(items, t)
		}
	}
	return jsonResult(items), nil
}

func (s *Server) readTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	todo, err := s.store.GetTodo(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	return jsonResult(todo), nil
}

func (s *Server) createTodo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	draft := models.TempTodo{
		Title:   title,
		Content: req.GetString("content", ""),
	}
	if tag := req.GetString("tag", ""); tag != "" {
		draft.Tags = []string{tag}
	}
	id, err := s.store.SaveTodo(ctx, draft)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s", id)), nil
}

func (s *Server) updateTodoContent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	patch := models.TodoPatch{Content: &content}
	if title := req.GetString("title", ""); title != "" {
		patch.Title = &title
	}
	if err := s.store.UpdateTodo(ctx, id, patch); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %s", id)), nil
}

func (s *Server) deleteTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if err := s.store.DeleteTodos(ctx, ids); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", strings.Join(ids, ", "))), nil
}

func (s *Server) searchTodos(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.store.Search(ctx, query, todostore.DefaultSearchLimit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) listTags(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.store.SelectableTags()), nil
}

func (s *Server) getTodoContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(TodoFormatContract), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      FormatURI,
			MIMEType: "text/markdown",
			Text:     TodoFormatContract,
		},
	}, nil
}
