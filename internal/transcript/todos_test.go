// internal/transcript/todos_test.go
package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/user/hooksmith/internal/types"
)

func writeTranscript(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func todoWrite(id, todosJSON string) string {
	return `{"message":{"content":[{"type":"tool_use","name":"TodoWrite","id":"` + id + `","input":{"todos":` + todosJSON + `}}]}}`
}

func toolResult(toolUseID, content string) string {
	return `{"message":{"content":[{"type":"tool_result","tool_use_id":"` + toolUseID + `","content":"` + content + `"}]}}`
}

func TestScanNoTranscript(t *testing.T) {
	if got := Scan(""); got != nil {
		t.Errorf("empty path should yield nil, got %v", got)
	}
	if got := Scan(filepath.Join(t.TempDir(), "missing.jsonl")); got != nil {
		t.Errorf("missing file should yield nil, got %v", got)
	}
}

func TestScanNoTodoWrites(t *testing.T) {
	path := writeTranscript(t,
		`{"message":{"content":[{"type":"text"}]}}`,
		toolResult("x", "done"),
	)
	if got := Scan(path); got != nil {
		t.Errorf("expected nil with no TodoWrite calls, got %v", got)
	}
}

func TestScanLatestWins(t *testing.T) {
	path := writeTranscript(t,
		todoWrite("t1", `[{"content":"first","status":"pending"}]`),
		todoWrite("t2", `[{"content":"second","status":"in_progress"},{"content":"third","status":"completed"}]`),
	)
	got := Scan(path)
	if len(got) != 2 {
		t.Fatalf("expected latest list with 2 items, got %v", got)
	}
	if got[0].Content != "second" {
		t.Errorf("expected latest list, got %+v", got)
	}
}

func TestScanSkipsRejectedWrites(t *testing.T) {
	path := writeTranscript(t,
		todoWrite("t1", `[{"content":"keep","status":"pending"}]`),
		todoWrite("t2", `[{"content":"rejected","status":"pending"}]`),
		toolResult("t2", "The user doesn't want to proceed with this tool use."),
	)
	got := Scan(path)
	if len(got) != 1 || got[0].Content != "keep" {
		t.Errorf("rejected write should be skipped, got %v", got)
	}
}

func TestScanExplicitClear(t *testing.T) {
	path := writeTranscript(t,
		todoWrite("t1", `[{"content":"work","status":"pending"}]`),
		todoWrite("t2", `[]`),
	)
	got := Scan(path)
	if got == nil {
		t.Fatal("explicit clear should yield a non-nil empty slice")
	}
	if len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}

func TestScanNullTodosIgnored(t *testing.T) {
	path := writeTranscript(t,
		todoWrite("t1", `[{"content":"work","status":"pending"}]`),
		todoWrite("t2", `null`),
	)
	got := Scan(path)
	if len(got) != 1 || got[0].Content != "work" {
		t.Errorf("null todos payload should not count as a clear, got %v", got)
	}
}

func TestScanSkipsMalformedLines(t *testing.T) {
	path := writeTranscript(t,
		"this is not json",
		todoWrite("t1", `[{"content":"survives","status":"pending"}]`),
		"{truncated",
	)
	got := Scan(path)
	if len(got) != 1 || got[0].Content != "survives" {
		t.Errorf("malformed lines should be skipped, got %v", got)
	}
}

func TestPending(t *testing.T) {
	todos := []types.TodoItem{
		{Content: "a", Status: "pending"},
		{Content: "b", Status: "in_progress"},
		{Content: "c", Status: "completed"},
	}
	got := Pending(todos)
	if len(got) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(got))
	}
	if got[0].Content != "a" || got[1].Content != "b" {
		t.Errorf("wrong items filtered: %v", got)
	}

	if got := Pending(nil); got != nil {
		t.Errorf("expected nil for nil input, got %v", got)
	}
}
