// Package events provides event management functionality.
package events

import (
	"time"
)

// EventType represents different event types
type EventType string

const (
	// Journal changes
	TradesImported EventType = "TRADES_IMPORTED"
	TradeCreated   EventType = "TRADE_CREATED"
	TradeUpdated   EventType = "TRADE_UPDATED"
	TradeDeleted   EventType = "TRADE_DELETED"
	ImportReverted EventType = "IMPORT_REVERTED"

	// System
	BackupCompleted EventType = "BACKUP_COMPLETED"
	ErrorOccurred   EventType = "ERROR_OCCURRED"
)

// AllEventTypes lists every event type the service emits
func AllEventTypes() []EventType {
	return []EventType{
		TradesImported,
		TradeCreated,
		TradeUpdated,
		TradeDeleted,
		ImportReverted,
		BackupCompleted,
		ErrorOccurred,
	}
}

// Event represents a system event
type Event struct {
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
	Module    string                 `json:"module"`
}
