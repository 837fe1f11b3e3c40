package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusNew       SubscriptionStatus = "new"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
)

type Subscription struct {
	ID           string
	Email        string
	Status       SubscriptionStatus
	SubscribedAt time.Time
}

type ContactMessage struct {
	ID        string
	Name      string
	Email     string
	Subject   string
	Message   string
	CreatedAt time.Time
}
