package domain

import "time"

const (
	ActionIngested      = "ingested"
	ActionRatingUpdated = "rating_updated"
)

type GameEvent struct {
	Action    string    `json:"action"`
	Game      Game      `json:"game"`
	Timestamp time.Time `json:"timestamp"`
}
