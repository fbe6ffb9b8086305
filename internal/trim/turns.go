package trim

import "github.com/katamari-chat/katamari/internal/schema"

// GroupTurns partitions a conversation into ordered turns. A turn starts
// at each "user" message and carries every following non-user message up
// to the next "user" message; a leading run of non-user messages forms a
// turn of its own. Concatenating the returned turns in order reproduces
// the conversation exactly.
func GroupTurns(conversation []schema.Message) [][]schema.Message {
	var turns [][]schema.Message
	var current []schema.Message
	for _, m := range conversation {
		if m.Role == schema.RoleUser && len(current) > 0 {
			turns = append(turns, current)
			current = nil
		}
		current = append(current, m)
	}
	if len(current) > 0 {
		turns = append(turns, current)
	}
	return turns
}
