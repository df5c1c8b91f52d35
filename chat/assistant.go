package chat

import (
	"fmt"
	"time"

	"linkup/models"
)

const welcomeID = "welcome-1"

func assistantProfile() models.User {
	return models.User{
		ID:       models.AssistantID,
		Name:     models.AssistantName,
		Username: models.AssistantID,
		Email:    "ai@linkup.com",
		Status:   "Hi, I'm Linko! How may I assist you?",
		IsFriend: "True",
		Online:   true,
	}
}

func assistantWelcome(now time.Time) models.Message {
	return models.Message{
		ID:            welcomeID,
		Content:       "Hello! I'm Linko, your AI assistant. How can I help you today?",
		Sender:        models.AssistantName,
		DisplaySender: models.AssistantName,
		SentAt:        now,
	}
}

var assistantReplies = []string{
	`I understand you're saying: "%s". How can I assist you further?`,
	`Thanks for your message! Regarding "%s", I'm here to help. What would you like to know?`,
	`I've received your query about "%s". Is there anything specific you'd like me to explain?`,
	`That's interesting! About "%s" - how can I provide more information?`,
}

// assistantReply picks a scripted reply echoing text. pick chooses an
// index in [0, n).
func assistantReply(text string, pick func(n int) int) string {
	return fmt.Sprintf(assistantReplies[pick(len(assistantReplies))], text)
}
