// Package chant tracks interactive mantra repetition sessions. Sessions are
// ephemeral in-process state; only completed achievements are durable.
package chant

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mode is the input mode driving a session's counter. Exactly one mode is
// active for the lifetime of a session run; switching requires a reset.
type Mode string

const (
	ModeManual Mode = "manual"
	ModeVoice  Mode = "voice"
	ModeAudio  Mode = "audio"
)

// Preset target counts. Any custom target >= 1 is also accepted.
var PresetTargets = []int{9, 108, 1008}

// Session errors
var (
	ErrInvalidTarget    = errors.New("target must be at least 1")
	ErrInvalidMode      = errors.New("unknown chant mode")
	ErrWrongMode        = errors.New("event does not match the session's active mode")
	ErrVoiceUnavailable = errors.New("voice mode is unavailable: this device has no speech recognition")
	ErrNoAudioClip      = errors.New("audio mode is unavailable: this mantra has no audio clip")
	ErrSessionNotFound  = errors.New("chant session not found")
	ErrNotOwner         = errors.New("chant session belongs to another user")
)

// Capabilities declares what the client runtime can do. The server cannot
// probe a browser, so the client reports this at session start.
type Capabilities struct {
	SpeechRecognition bool `json:"speech_recognition"`
	AudioPlayback     bool `json:"audio_playback"`
}

// sacredKeywords is the whitelist of tokens that count a voice utterance.
// An utterance increments by exactly one no matter how many tokens match.
var sacredKeywords = map[string]struct{}{
	"om":      {},
	"aum":     {},
	"namah":   {},
	"namaha":  {},
	"namo":    {},
	"shivaya": {},
	"rama":    {},
	"krishna": {},
	"hare":    {},
	"jai":     {},
	"swaha":   {},
	"shanti":  {},
}

// ContainsSacredKeyword reports whether a transcript contains any whitelisted
// token.
func ContainsSacredKeyword(transcript string) bool {
	for _, word := range strings.Fields(strings.ToLower(transcript)) {
		word = strings.Trim(word, ".,!?;:\"'")
		if _, ok := sacredKeywords[word]; ok {
			return true
		}
	}
	return false
}

// State is a snapshot of a session returned to the client after each event
type State struct {
	SessionID    string `json:"session_id"`
	MantraID     string `json:"mantra_id"`
	Mode         Mode   `json:"mode"`
	Target       int    `json:"target"`
	Count        int    `json:"count"`
	Completed    bool   `json:"completed"`
	JustDone     bool   `json:"just_completed"` // true only on the event that reached the target
	PlayTone     bool   `json:"play_tone"`      // client should play the completion tone
	AudioRunning bool   `json:"audio_running"`  // client should keep replaying the clip
}

// session is the internal mutable state; all access goes through Registry
type session struct {
	id        string
	userID    string
	mantraID  string
	mode      Mode
	target    int
	count     int
	completed bool
}

func (s *session) snapshot(justDone bool) State {
	return State{
		SessionID:    s.id,
		MantraID:     s.mantraID,
		Mode:         s.mode,
		Target:       s.target,
		Count:        s.count,
		Completed:    s.completed,
		JustDone:     justDone,
		PlayTone:     justDone,
		AudioRunning: s.mode == ModeAudio && !s.completed,
	}
}

// CompletionFunc is called exactly once when a session reaches its target,
// to append the durable achievement record.
type CompletionFunc func(userID, mantraID string, target int, completedAt time.Time)

// Registry holds the active chant sessions
type Registry struct {
	mu         sync.Mutex
	sessions   map[string]*session
	onComplete CompletionFunc
	now        func() time.Time
}

// NewRegistry creates a new session registry
func NewRegistry(onComplete CompletionFunc) *Registry {
	return &Registry{
		sessions:   make(map[string]*session),
		onComplete: onComplete,
		now:        time.Now,
	}
}

// Start creates a new session. Voice and audio modes are refused up front
// when the declared capabilities or the mantra cannot support them, rather
// than letting the mode silently no-op.
func (r *Registry) Start(userID, mantraID string, target int, mode Mode, caps Capabilities, mantraHasAudio bool) (State, error) {
	if target < 1 {
		return State{}, ErrInvalidTarget
	}

	switch mode {
	case ModeManual:
	case ModeVoice:
		if !caps.SpeechRecognition {
			return State{}, ErrVoiceUnavailable
		}
	case ModeAudio:
		if !mantraHasAudio {
			return State{}, ErrNoAudioClip
		}
	default:
		return State{}, ErrInvalidMode
	}

	s := &session{
		id:       uuid.New().String(),
		userID:   userID,
		mantraID: mantraID,
		mode:     mode,
		target:   target,
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()

	return s.snapshot(false), nil
}

// Increment applies a manual count event
func (r *Registry) Increment(sessionID, userID string) (State, error) {
	return r.apply(sessionID, userID, ModeManual, true)
}

// VoiceTranscript applies a speech-recognition result. The counter moves by
// exactly one when any sacred keyword appears, regardless of how many
// keywords the utterance contained.
func (r *Registry) VoiceTranscript(sessionID, userID, transcript string) (State, error) {
	return r.apply(sessionID, userID, ModeVoice, ContainsSacredKeyword(transcript))
}

// AudioComplete applies one completed audio playback
func (r *Registry) AudioComplete(sessionID, userID string) (State, error) {
	return r.apply(sessionID, userID, ModeAudio, true)
}

// apply advances the counter by one if counts is true. Events after
// completion are ignored until an explicit reset; completion fires exactly
// once.
func (r *Registry) apply(sessionID, userID string, mode Mode, counts bool) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(sessionID, userID)
	if err != nil {
		return State{}, err
	}

	if s.mode != mode {
		return State{}, ErrWrongMode
	}

	if s.completed || !counts {
		return s.snapshot(false), nil
	}

	s.count++
	if s.count >= s.target {
		s.count = s.target
		s.completed = true
		if r.onComplete != nil {
			r.onComplete(s.userID, s.mantraID, s.target, r.now())
		}
		return s.snapshot(true), nil
	}

	return s.snapshot(false), nil
}

// Reset zeroes the counter and clears the completion flag. Any active input
// mode stops client-side; the snapshot's AudioRunning flag reflects that the
// clip should be rewound, not replayed.
func (r *Registry) Reset(sessionID, userID string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(sessionID, userID)
	if err != nil {
		return State{}, err
	}

	s.count = 0
	s.completed = false
	state := s.snapshot(false)
	state.AudioRunning = false
	return state, nil
}

// Get returns a session snapshot
func (r *Registry) Get(sessionID, userID string) (State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(sessionID, userID)
	if err != nil {
		return State{}, err
	}
	return s.snapshot(false), nil
}

// End removes a session from the registry (view teardown)
func (r *Registry) End(sessionID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.lookup(sessionID, userID); err != nil {
		return err
	}
	delete(r.sessions, sessionID)
	return nil
}

// lookup finds a session and checks ownership. Callers hold r.mu.
func (r *Registry) lookup(sessionID, userID string) (*session, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.userID != userID {
		return nil, ErrNotOwner
	}
	return s, nil
}
