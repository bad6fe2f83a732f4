package core

import (
	"time"

	"github.com/google/uuid"
)

const (
	AquaName          = "AquaBot"
	AquaUserAgent     = "AquaBot/0.1"
	AquaRepositoryURL = "https://github.com/sandevgo/aquabot"
	AquaVersion       = "0.1.0"
)

// GreetingID is the fixed id of the message every session opens with.
const GreetingID = "initial"

type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMessage(sender Sender, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		CreatedAt: time.Now(),
	}
}

// KnowledgeEntry is one keyword/answer row of the local knowledge table.
type KnowledgeEntry struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Answer  string `yaml:"answer" json:"answer"`
}

type CompletionRequest struct {
	Prompt   string
	JSONMode bool
}
