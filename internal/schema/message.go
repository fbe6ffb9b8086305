// Package schema defines the conversation message types shared across
// katamari packages.
package schema

import (
	"encoding/json"
	"fmt"
)

// Roles katamari treats specially. Role is an open string tag: callers may
// use any role (e.g. "developer", "tool") and mark it as a priority role
// when its messages must survive trimming.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a conversation history. Insertion order is
// semantically meaningful and is preserved by every operation on it.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// WireMessage is the loosely-typed JSON form accepted at the service edges,
// where content may arrive as a string, a number, or structured blocks.
type WireMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// Message converts the wire form into the fixed-field record used
// internally, coercing non-string content to its serialized form.
func (w WireMessage) Message() Message {
	return Message{Role: w.Role, Content: CoerceContent(w.Content)}
}

// CoerceContent renders a decoded JSON content value as the string form
// used for token costing. Non-string values are serialized, never rejected.
func CoerceContent(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}
