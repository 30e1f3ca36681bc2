package jcsh

import (
	"os"
	"time"

	"github.com/google/uuid"
)

// Session is the ambient record of one shell invocation: when it started,
// which user owns it, and a correlation id a caller wiring up structured
// logging can attach to every log line this process emits.
type Session struct {
	StartTime time.Time
	UserID    int
	SessionID string
}

// NewSession captures the current time, uid and a fresh session id.
func NewSession() *Session {
	return &Session{
		StartTime: time.Now(),
		UserID:    os.Getuid(),
		SessionID: uuid.New().String(),
	}
}
