package model

import (
	"time"

	"github.com/Astemirdum/library-admin/pkg/kafka"
)

type Event struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Actor     string    `json:"actor" db:"actor"`
	Entity    string    `json:"entity" db:"entity"`
	EntityID  string    `json:"entityId" db:"entity_id"`
	Action    string    `json:"action" db:"action"`
	Summary   string    `json:"summary" db:"summary"`
}

func FromKafka(e kafka.EventActivity) Event {
	return Event{
		ID:        e.ID,
		Timestamp: e.Timestamp.UTC(),
		Actor:     e.Actor,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
		Action:    e.Action,
		Summary:   e.Summary,
	}
}

type Filter struct {
	Entity string
	Limit  int
}

type List struct {
	Items []Event `json:"items"`
}
