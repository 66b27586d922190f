package models

import "time"

// WebhookEvent is a delivery that finished processing. Replays of the same event id are skipped.
type WebhookEvent struct {
	EventID     string         `bson:"eventId" json:"eventId"`
	Channel     WebhookChannel `bson:"channel" json:"channel"`
	Type        string         `bson:"type" json:"type"`
	Outcome     string         `bson:"outcome" json:"outcome"`
	ProcessedAt time.Time      `bson:"processedAt" json:"processedAt"`
}
