package models

import "time"

// ErrorLog is one entry of the in-memory error ring. Consecutive reports
// with the same level, source and message share an entry and bump Count.
type ErrorLog struct {
	ID        int       `json:"id"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Detail    string    `json:"detail,omitempty"`
	Context   string    `json:"context,omitempty"`
	Stack     string    `json:"stack,omitempty"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	Timestamp time.Time `json:"timestamp"`
}
