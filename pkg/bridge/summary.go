package bridge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/amberhq/amber/pkg/record"
)

const (
	previewLen     = 120
	summaryRecords = 5
)

// summarize produces the advisory bridge summary: message and role counts,
// previews of the first and last user message, and a short listing of the
// hydrated context records by pattern type. The summary is descriptive
// text; the authoritative payload is always the full message list and
// context id set. Nothing to summarize yields an empty string.
func summarize(messages []record.Message, records []*record.ContextRecord) string {
	if len(messages) == 0 && len(records) == 0 {
		return ""
	}

	var b strings.Builder

	if len(messages) > 0 {
		roleCounts := make(map[string]int)
		for _, m := range messages {
			roleCounts[m.Role]++
		}

		roles := make([]string, 0, len(roleCounts))
		for role := range roleCounts {
			roles = append(roles, role)
		}
		sort.Strings(roles)

		parts := make([]string, 0, len(roles))
		for _, role := range roles {
			parts = append(parts, fmt.Sprintf("%d %s", roleCounts[role], role))
		}

		fmt.Fprintf(&b, "%d messages (%s).", len(messages), strings.Join(parts, ", "))

		if first := firstUserMessage(messages); first != "" {
			fmt.Fprintf(&b, " Opened with: %q.", preview(first))
		}
		if last := lastUserMessage(messages); last != "" {
			fmt.Fprintf(&b, " Last user message: %q.", preview(last))
		}
	}

	if len(records) > 0 {
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%d context records carried:", len(records))

		n := min(len(records), summaryRecords)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, " [%s] %s;", records[i].PatternType, preview(records[i].MatchText))
		}
		if len(records) > n {
			fmt.Fprintf(&b, " and %d more.", len(records)-n)
		}
	}

	return strings.TrimSpace(b.String())
}

func firstUserMessage(messages []record.Message) string {
	for _, m := range messages {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}

func lastUserMessage(messages []record.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// preview truncates text for the summary only. The persisted payload is
// never truncated.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "…"
}
