// Package events publishes viewer session events.
//
// The server emits one event when a session opens or closes, when its
// highlight changes and when its layout settles. Subscribers such as a
// notebook or a second display follow a session without polling it.
package events

import (
	"context"
	"time"
)

// Event topics, relative to the publisher's subject prefix.
const (
	TopicSessionOpened = "session.opened"
	TopicSessionClosed = "session.closed"
	TopicFocusChanged  = "focus.changed"
	TopicLayoutSettled = "layout.settled"
)

// SessionOpened is published when a viewer session starts.
type SessionOpened struct {
	SessionID    string    `json:"session_id"`
	DocumentHash string    `json:"document_hash"`
	Nodes        int       `json:"nodes"`
	Links        int       `json:"links"`
	At           time.Time `json:"at"`
}

// SessionClosed is published when a session ends or expires.
type SessionClosed struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// FocusChanged is published when a session's highlight changes.
type FocusChanged struct {
	SessionID string   `json:"session_id"`
	Mode      string   `json:"mode"`
	Focus     string   `json:"focus,omitempty"`
	Title     string   `json:"title"`
	Lines     []string `json:"lines,omitempty"`
}

// LayoutSettled is published when a session's simulation cools down.
type LayoutSettled struct {
	SessionID string  `json:"session_id"`
	Ticks     int     `json:"ticks"`
	Alpha     float64 `json:"alpha"`
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
