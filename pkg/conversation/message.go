package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Author identifies which side of the conversation produced a message.
type Author string

const (
	AuthorUser      Author = "user"
	AuthorAssistant Author = "assistant"
)

// Message is one entry in the conversation. Entries are never edited or
// reordered after creation; the ID exists for rendering identity only.
type Message struct {
	ID        string    `json:"id"`
	Author    Author    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Error     bool      `json:"error"`
}

func newMessage(author Author, content string, isErr bool) Message {
	return Message{
		ID:        uuid.NewString(),
		Author:    author,
		Content:   content,
		Timestamp: time.Now().UTC(),
		Error:     isErr,
	}
}
