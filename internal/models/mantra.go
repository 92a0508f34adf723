package models

import "time"

// Mantra represents a chantable mantra with optional playback audio.
// A mantra without an audio URL cannot be chanted in audio mode.
type Mantra struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Text        string    `json:"text" db:"text"`
	Meaning     *string   `json:"meaning,omitempty" db:"meaning"`
	AudioURL    *string   `json:"audio_url,omitempty" db:"audio_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// HasAudio reports whether the mantra has a playable audio clip attached
func (m *Mantra) HasAudio() bool {
	return m.AudioURL != nil && *m.AudioURL != ""
}

// ChantAchievement is the durable record appended when a chant session
// reaches its target count.
type ChantAchievement struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	MantraID    string    `json:"mantra_id" db:"mantra_id"`
	Target      int       `json:"target" db:"target"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}
