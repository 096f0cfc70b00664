package model

import "time"

// NotificationKind names the message a participant receives.
type NotificationKind string

// Notification kinds.
const (
	NotifyVerification NotificationKind = "verification"
	NotifyWinner       NotificationKind = "winner"
)

// Notification is a queued message for a participant. SubjectID is the
// participant id for verification messages and the winner id for winner
// messages.
type Notification struct {
	Kind       NotificationKind
	SubjectID  string
	EnqueuedAt time.Time
}
