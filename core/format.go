package core

import (
	"fmt"
	"sort"
	"strings"
)

// Format renders the bundle as a prompt-injection block for the reasoning
// service. Sections are omitted when empty so trivial turns stay cheap.
func (b *ContextBundle) Format() string {
	if b.Empty() {
		return ""
	}

	var parts []string

	if len(b.Turns) > 0 {
		parts = append(parts, "=== RECENT CONVERSATION (newest first) ===")
		for _, turn := range b.Turns {
			parts = append(parts, fmt.Sprintf("[%s] %s", turn.Speaker, turn.Text))
		}
	}

	if len(b.Neighbors) > 0 {
		parts = append(parts, "=== RELATED CONCEPTS AND RESOURCES ===")
		for _, n := range b.Neighbors {
			parts = append(parts, fmt.Sprintf("- %s (%s, weight %.2f)", n.DisplayName, n.Relation, n.Weight))
		}
	}

	if len(b.Events) > 0 {
		parts = append(parts, "=== PAST ACTIONS ===")
		for _, ev := range b.Events {
			parts = append(parts, fmt.Sprintf("- %s at %s: %s", ev.Kind, ev.Timestamp.Format("2006-01-02 15:04"), summarizePayload(ev.Payload)))
		}
	}

	if len(b.Recall) > 0 {
		parts = append(parts, "=== RELEVANT MEMORIES ===")
		for _, r := range b.Recall {
			parts = append(parts, "- "+r)
		}
	}

	return strings.Join(parts, "\n")
}

// summarizePayload flattens an event payload into a short key=value line.
func summarizePayload(payload map[string]interface{}) string {
	if len(payload) == 0 {
		return "(no details)"
	}
	pairs := make([]string, 0, len(payload))
	for k, v := range payload {
		s := fmt.Sprintf("%v", v)
		if len(s) > 80 {
			s = s[:77] + "..."
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, s))
	}
	// Map iteration order is random; sort for stable prompts.
	sort.Strings(pairs)
	return strings.Join(pairs, " ")
}
