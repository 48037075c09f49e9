package domain

import "fmt"

// Event represents a bookable event.
// Identity is structural; ID, Venue and Date are informational only.
type Event struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"      validate:"required"`
	City  string `json:"city"      validate:"required"`
	Price int    `json:"price"     validate:"min=0"`
	Venue string `json:"venueName,omitempty"`
	Date  string `json:"date,omitempty"`
}

func (e Event) String() string {
	return fmt.Sprintf("Event(name=%s, city=%s, price=%d)", e.Name, e.City, e.Price)
}

// Category is a node of the event taxonomy.
// Any node may carry both events and children.
type Category struct {
	ID       int64      `json:"id,omitempty"`
	Name     string     `json:"name"     validate:"required"`
	Children []Category `json:"children" validate:"dive"`
	Events   []Event    `json:"events"   validate:"dive"`
}
