package mcpserver

// TodoFormatContract tells LLM clients how Jera structures todos.
const TodoFormatContract = `# Jera Todo Format

A todo is a list entry plus a body stored separately.

## Fields

| Field | Meaning |
|---|---|
| ` + "`id`" + ` | Stable identifier, assigned on create. Never changes. |
| ` + "`title`" + ` | Short line shown in the list and on the board. |
| ` + "`time`" + ` | Display timestamp, ` + "`YYYY-MM-DD HH:MM`" + `. Stamped on create when empty. |
| ` + "`content`" + ` | Body text. Stored as-is; Jera does not parse it. |
| ` + "`tags`" + ` | At most one tag id. No tag means the todo is unfiled (` + "`NoTag`" + `). |
| ` + "`isCloudSynced`" + ` | Informational flag, not used by the server. |
| ` + "`uid`" + ` | Owner id, stamped on create. |

## Rules

1. Pick tags from ` + "`list_tags`" + `. Unknown tag ids are rejected.
2. A todo carries one tag. Moving it between board columns means changing that tag.
3. ` + "`delete_todos`" + ` is all or nothing: if any id is unknown nothing is deleted.
4. The list order is owned by the user. New todos are appended at the end.
5. Content is UTF-8 text. Rich text from the editor arrives as HTML; keep it intact
   when updating and prefer plain paragraphs when creating.

## Example

` + "```" + `json
{
  "id": "3f0c9d6e-1b1a-4a43-9c55-8f1f7e9b7a10",
  "title": "Buy milk",
  "time": "2026-10-17 09:30",
  "content": "<p>2L, oat</p>",
  "tags": ["todo"],
  "isCloudSynced": false,
  "isSelected": false,
  "uid": "guest"
}
` + "```" + `
`
