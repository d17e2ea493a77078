package domain

import "github.com/goccy/go-json"

// Watched change-feed collections.
const (
	BookingsCollection   = "bookings"
	PropertiesCollection = "properties"
	ProfilesCollection   = "user_profiles"
)

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// ChangeEvent is one row-level change pushed by the remote store. New carries
// the row after the change (INSERT/UPDATE), Old the row before it
// (UPDATE/DELETE).
type ChangeEvent struct {
	EventType EventType       `json:"eventType"`
	New       json.RawMessage `json:"new"`
	Old       json.RawMessage `json:"old"`
}

// FeedEnvelope wraps a change event with the collection it belongs to, one
// envelope per affected row.
type FeedEnvelope struct {
	Collection string      `json:"collection"`
	Event      ChangeEvent `json:"event"`
}

type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)
