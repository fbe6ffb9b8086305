package trim

import "github.com/katamari-chat/katamari/internal/schema"

// selectRecent is the message-preserving strategy (minTurns == 0).
//
// Messages in the final turn and messages bearing a priority role are
// forced: they are always kept and their cost is charged unconditionally.
// Everything else is scanned newest-first and kept only while it fits the
// remaining budget. An oversized non-forced message is skipped, not a stop
// condition — older forced or fitting messages must still be considered.
// Forced tracking uses positional indices, so duplicate message values
// cannot alias each other.
func selectRecent(conversation []schema.Message, budget int, priorityRoles map[string]bool, counter *Counter) []schema.Message {
	forced := make([]bool, len(conversation))
	if turns := GroupTurns(conversation); len(turns) > 0 {
		for i := len(conversation) - len(turns[len(turns)-1]); i < len(conversation); i++ {
			forced[i] = true
		}
	}
	if len(priorityRoles) > 0 {
		for i, m := range conversation {
			if priorityRoles[m.Role] {
				forced[i] = true
			}
		}
	}

	keep := make([]bool, len(conversation))
	total := 0
	for i := len(conversation) - 1; i >= 0; i-- {
		cost := counter.Count(conversation[i].Content)
		if forced[i] {
			keep[i] = true
			total += cost
			continue
		}
		if total+cost > budget {
			continue
		}
		keep[i] = true
		total += cost
	}

	var kept []schema.Message
	for i, m := range conversation {
		if keep[i] {
			kept = append(kept, m)
		}
	}
	return kept
}

// selectTurns is the turn-preserving strategy (minTurns > 0). The last
// turn is always kept. Older turns are scanned newest-first and kept when
// they fit the remaining budget, when fewer than minTurns turns have been
// kept, or when they contain a priority-role message. Kept turns are
// flattened back into original order.
func selectTurns(conversation []schema.Message, budget, minTurns int, priorityRoles map[string]bool, counter *Counter) []schema.Message {
	turns := GroupTurns(conversation)
	if len(turns) == 0 {
		return nil
	}

	keep := make([]bool, len(turns))
	total := 0
	turnsKept := 0
	for i := len(turns) - 1; i >= 0; i-- {
		cost := 0
		for _, m := range turns[i] {
			cost += counter.Count(m.Content)
		}
		latest := i == len(turns)-1
		if !latest && total+cost > budget && turnsKept >= minTurns && !turnHasPriority(turns[i], priorityRoles) {
			continue
		}
		keep[i] = true
		total += cost
		turnsKept++
	}

	var kept []schema.Message
	for i, turn := range turns {
		if keep[i] {
			kept = append(kept, turn...)
		}
	}
	return kept
}

func turnHasPriority(turn []schema.Message, priorityRoles map[string]bool) bool {
	for _, m := range turn {
		if priorityRoles[m.Role] {
			return true
		}
	}
	return false
}
