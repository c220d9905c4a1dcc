package dto

import "time"

// AssistantMessage is one turn in an assistant conversation.
type AssistantMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// AssistantInbound is the payload clients send over the websocket.
type AssistantInbound struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// AssistantHistoryResponse returns the stored conversation for a user.
type AssistantHistoryResponse struct {
	Messages []AssistantMessage `json:"messages"`
}
