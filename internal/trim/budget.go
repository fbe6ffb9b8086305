package trim

import "github.com/katamari-chat/katamari/internal/schema"

// budgetFloor is the minimum usable token budget. It protects the latest
// turn from pathologically small caller-supplied targets.
const budgetFloor = 256

// allocate returns the system messages retained ahead of selection and the
// budget left for the conversation after charging for them.
//
// Only the first system message is kept unconditionally. A later system
// message survives only when the "system" role itself is a priority role —
// a deliberately narrow rule, kept as-is pending product clarification.
func allocate(targetTokens int, systemMessages []schema.Message, priorityRoles map[string]bool, counter *Counter) ([]schema.Message, int) {
	base := max(budgetFloor, targetTokens)

	var kept []schema.Message
	for _, m := range systemMessages {
		if len(kept) == 0 || priorityRoles[m.Role] {
			kept = append(kept, m)
		}
	}

	used := 0
	for _, m := range kept {
		used += counter.Count(m.Content)
	}
	return kept, max(0, base-used)
}
