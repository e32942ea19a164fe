package models

import "time"

// Register is a single saved calculator state. UserID is always derived from
// the authenticated session, never from the request payload.
type Register struct {
	ID        int64
	UserID    int64
	Register  string
	Date      string
	Label     string
	CreatedAt time.Time
}
