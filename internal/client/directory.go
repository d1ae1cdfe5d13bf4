package client

import "time"

// SessionInfo is one row of the session directory.
type SessionInfo struct {
	ID           string
	Title        string
	MessageCount int
	CreatedAt    time.Time
}

// Directory caches the server's session list, newest first.
type Directory struct {
	sessions []SessionInfo
}

// Set replaces the cached list.
func (d *Directory) Set(sessions []SessionInfo) {
	d.sessions = sessions
}

// Sessions returns a copy of the cached list.
func (d *Directory) Sessions() []SessionInfo {
	out := make([]SessionInfo, len(d.sessions))
	copy(out, d.sessions)
	return out
}
