// internal/approval/rules.go
package approval

import (
	"encoding/json"
	"fmt"
	"strings"
)

// readOnlyTools never mutate anything and are always safe.
var readOnlyTools = map[string]bool{
	"Read": true,
	"Grep": true,
	"Glob": true,
}

// coreTools are assistant-internal operations that only affect the
// assistant's own bookkeeping.
var coreTools = map[string]bool{
	"TodoWrite":       true,
	"Task":            true,
	"Skill":           true,
	"SlashCommand":    true,
	"AskUserQuestion": true,
	"ExitPlanMode":    true,
}

// safeTempPrefixes are directory prefixes under which file writes carry no
// lasting risk.
var safeTempPrefixes = []string{"/tmp/", "/var/tmp/", "/private/tmp/"}

// safeByRule applies the deterministic fast path: read-only tools, core
// assistant tools, and writes confined to temporary directories are safe
// without consulting the judge.
func safeByRule(toolName string, toolInput json.RawMessage) (bool, string) {
	if readOnlyTools[toolName] {
		return true, fmt.Sprintf("%s operation - safe (read-only)", toolName)
	}

	if coreTools[toolName] {
		return true, fmt.Sprintf("%s - core assistant tool (safe)", toolName)
	}

	if toolName == "Write" || toolName == "Edit" {
		var in struct {
			FilePath string `json:"file_path"`
		}
		if err := json.Unmarshal(toolInput, &in); err == nil {
			for _, prefix := range safeTempPrefixes {
				if strings.HasPrefix(in.FilePath, prefix) {
					return true, fmt.Sprintf("Write to temporary directory - safe (%s)", in.FilePath)
				}
			}
		}
	}

	return false, "Operation requires review"
}
