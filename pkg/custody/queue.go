package custody

import (
	"time"
)

type Message struct {
	ID         string
	CreatedAt  time.Time
	RetryCount int
	Message    any
}

// ReceiptMessage carries a confirmed transfer to the post-confirmation jobs.
type ReceiptMessage struct {
	Receipt Receipt
}

func newMessage(id string, message any) *Message {
	return &Message{
		ID:         id,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		Message:    message,
	}
}

func NewReceiptMessage(r Receipt) *Message {
	return newMessage(r.TransactionHash, ReceiptMessage{Receipt: r})
}
