// internal/transcript/todos.go

// Package transcript reconstructs todo state from the assistant's
// append-only JSONL transcript log.
package transcript

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"

	"github.com/user/hooksmith/internal/types"
)

// rejectionPhrase appears in a tool_result when the user declined the tool
// call it references.
const rejectionPhrase = "doesn't want to proceed"

// maxLineSize caps the scanner buffer; transcript lines carrying large tool
// results routinely exceed bufio's default 64K token limit.
const maxLineSize = 8 * 1024 * 1024

type entry struct {
	Message struct {
		Content []block `json:"content"`
	} `json:"message"`
}

type block struct {
	Type      string          `json:"type"`
	Name      string          `json:"name"`
	ID        string          `json:"id"`
	ToolUseID string          `json:"tool_use_id"`
	Content   json.RawMessage `json:"content"`
	Input     struct {
		Todos *[]types.TodoItem `json:"todos"`
	} `json:"input"`
}

// Scan returns the latest accepted todo list in the transcript, or nil when
// no TodoWrite call survives. An explicitly empty list is a meaningful
// result (all work cleared) and is returned as a non-nil empty slice. A
// missing or unreadable transcript is "no todos", not an error.
//
// Two passes are required because a rejection lands in the log after the
// tool call it references: pass one collects rejected tool ids, pass two
// keeps the last TodoWrite payload whose id is not among them.
func Scan(path string) []types.TodoItem {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	rejected := make(map[string]bool)
	walk(path, func(b block) {
		if b.Type != "tool_result" || b.ToolUseID == "" {
			return
		}
		if strings.Contains(string(b.Content), rejectionPhrase) {
			rejected[b.ToolUseID] = true
		}
	})

	var (
		latest []types.TodoItem
		found  bool
	)
	walk(path, func(b block) {
		if b.Type != "tool_use" || b.Name != "TodoWrite" {
			return
		}
		if rejected[b.ID] {
			return
		}
		if b.Input.Todos == nil {
			return
		}
		todos := *b.Input.Todos
		if todos == nil {
			return
		}
		latest = todos
		found = true
	})

	if !found {
		return nil
	}
	if latest == nil {
		latest = []types.TodoItem{}
	}
	return latest
}

// Pending filters a scan result to items still needing work.
func Pending(todos []types.TodoItem) []types.TodoItem {
	var pending []types.TodoItem
	for _, t := range todos {
		if t.Incomplete() {
			pending = append(pending, t)
		}
	}
	return pending
}

// walk streams the transcript line by line, invoking fn for every content
// block. Malformed lines are skipped.
func walk(path string, fn func(block)) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		for _, b := range e.Message.Content {
			fn(b)
		}
	}
}
