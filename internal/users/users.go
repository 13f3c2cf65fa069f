package users

import (
	"sort"
	"time"
)

// Session is what a chat is currently looking at
type Session struct {
	ChatID    int64     `json:"chat_id"`
	Username  string    `json:"username"`
	SongID    string    `json:"song_id"`
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WithKey returns a copy of the session showing another key
func (s Session) WithKey(key string) Session {
	s.Key = key
	s.UpdatedAt = time.Now()
	return s
}

type ByUpdated []Session

func (a ByUpdated) Len() int           { return len(a) }
func (a ByUpdated) Less(i, j int) bool { return a[i].UpdatedAt.Before(a[j].UpdatedAt) }
func (a ByUpdated) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }

// Sorted returns the sessions ordered from least to most recently updated
func Sorted(sessions map[int64]Session) []Session {
	list := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		list = append(list, s)
	}
	sort.Sort(ByUpdated(list))
	return list
}
