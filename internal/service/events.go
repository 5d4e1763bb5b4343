package service

import (
	"fmt"

	"github.com/google/uuid"
)

// Notifier receives events after the writing transaction has committed.
type Notifier interface {
	Publish(event any)
}

type ProductStock struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name,omitempty"`
	Stock int       `json:"stock"`
}

type EventUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StockEvent struct {
	Type     string         `json:"type"`
	Action   string         `json:"action"`
	EntityID uuid.UUID      `json:"entity_id"`
	Products []ProductStock `json:"products,omitempty"`
	User     EventUser      `json:"user"`
	Message  string         `json:"message"`
}

func publish(n Notifier, actor Actor, action string, entityID uuid.UUID, products []ProductStock, format string, args ...any) {
	if n == nil {
		return
	}
	n.Publish(StockEvent{
		Type:     "stock_update",
		Action:   action,
		EntityID: entityID,
		Products: products,
		User:     EventUser{ID: actor.ID, Name: actor.Name, Email: actor.Email},
		Message:  fmt.Sprintf("%s %s", actor.Name, fmt.Sprintf(format, args...)),
	})
}
