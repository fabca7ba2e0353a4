package entity

import "time"

type Message struct {
	ID         string    `json:"id"`
	ChatID     string    `json:"chatId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	IsRead     bool      `json:"isRead"`
	CreatedAt  time.Time `json:"createdAt"`
}
