package domain

import "time"

// StrategyName identifies a selection strategy.
type StrategyName string

const (
	StrategySameCity StrategyName = "same-city"
	StrategyNearest  StrategyName = "nearest"
	StrategyCheapest StrategyName = "cheapest"
)

// Strategies lists the strategies in dispatch order.
var Strategies = []StrategyName{StrategySameCity, StrategyNearest, StrategyCheapest}

// Delivery is a single (customer, event) notification handed to a sink.
type Delivery struct {
	SessionID string
	Customer  Customer
	Event     Event
	Strategy  StrategyName
	CreatedAt time.Time
}
