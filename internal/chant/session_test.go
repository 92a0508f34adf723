package chant

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedCompletion struct {
	userID   string
	mantraID string
	target   int
}

func newTestRegistry() (*Registry, *[]recordedCompletion) {
	completions := &[]recordedCompletion{}
	registry := NewRegistry(func(userID, mantraID string, target int, completedAt time.Time) {
		*completions = append(*completions, recordedCompletion{userID: userID, mantraID: mantraID, target: target})
	})
	return registry, completions
}

func TestStartValidation(t *testing.T) {
	registry, _ := newTestRegistry()
	userID := uuid.New().String()
	mantraID := uuid.New().String()

	t.Run("Preset Targets Accepted", func(t *testing.T) {
		for _, target := range PresetTargets {
			state, err := registry.Start(userID, mantraID, target, ModeManual, Capabilities{}, false)
			require.NoError(t, err)
			assert.Equal(t, target, state.Target)
			assert.Equal(t, 0, state.Count)
		}
	})

	t.Run("Custom Target Accepted", func(t *testing.T) {
		state, err := registry.Start(userID, mantraID, 21, ModeManual, Capabilities{}, false)
		require.NoError(t, err)
		assert.Equal(t, 21, state.Target)
	})

	t.Run("Zero Target Rejected", func(t *testing.T) {
		_, err := registry.Start(userID, mantraID, 0, ModeManual, Capabilities{}, false)
		assert.ErrorIs(t, err, ErrInvalidTarget)
	})

	t.Run("Voice Without Speech Recognition Rejected", func(t *testing.T) {
		_, err := registry.Start(userID, mantraID, 9, ModeVoice, Capabilities{SpeechRecognition: false}, false)
		assert.ErrorIs(t, err, ErrVoiceUnavailable)
	})

	t.Run("Voice With Speech Recognition Accepted", func(t *testing.T) {
		_, err := registry.Start(userID, mantraID, 9, ModeVoice, Capabilities{SpeechRecognition: true}, false)
		assert.NoError(t, err)
	})

	t.Run("Audio Without Clip Rejected", func(t *testing.T) {
		_, err := registry.Start(userID, mantraID, 9, ModeAudio, Capabilities{AudioPlayback: true}, false)
		assert.ErrorIs(t, err, ErrNoAudioClip)
	})

	t.Run("Unknown Mode Rejected", func(t *testing.T) {
		_, err := registry.Start(userID, mantraID, 9, Mode("telepathy"), Capabilities{}, false)
		assert.ErrorIs(t, err, ErrInvalidMode)
	})
}

func TestManualCountingAndCompletion(t *testing.T) {
	registry, completions := newTestRegistry()
	userID := uuid.New().String()
	mantraID := uuid.New().String()

	state, err := registry.Start(userID, mantraID, 9, ModeManual, Capabilities{}, false)
	require.NoError(t, err)

	for i := 1; i < 9; i++ {
		state, err = registry.Increment(state.SessionID, userID)
		require.NoError(t, err)
		assert.Equal(t, i, state.Count)
		assert.False(t, state.Completed)
		assert.False(t, state.PlayTone)
	}

	// Ninth count reaches the target
	state, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, state.Count)
	assert.True(t, state.Completed)
	assert.True(t, state.JustDone)
	assert.True(t, state.PlayTone)
	require.Len(t, *completions, 1)
	assert.Equal(t, 9, (*completions)[0].target)
	assert.Equal(t, userID, (*completions)[0].userID)

	// Further events are ignored and completion does not fire again
	state, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 9, state.Count, "counter must never exceed the target")
	assert.True(t, state.Completed)
	assert.False(t, state.JustDone)
	assert.False(t, state.PlayTone)
	assert.Len(t, *completions, 1)
}

func TestResetAllowsRecompletion(t *testing.T) {
	registry, completions := newTestRegistry()
	userID := uuid.New().String()

	state, err := registry.Start(userID, uuid.New().String(), 2, ModeManual, Capabilities{}, false)
	require.NoError(t, err)

	_, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	state, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	require.True(t, state.Completed)

	state, err = registry.Reset(state.SessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, state.Count)
	assert.False(t, state.Completed)

	_, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	state, err = registry.Increment(state.SessionID, userID)
	require.NoError(t, err)
	assert.True(t, state.Completed)
	assert.Len(t, *completions, 2, "completion fires once per run")
}

func TestVoiceTranscripts(t *testing.T) {
	registry, _ := newTestRegistry()
	userID := uuid.New().String()

	state, err := registry.Start(userID, uuid.New().String(), 108, ModeVoice, Capabilities{SpeechRecognition: true}, false)
	require.NoError(t, err)

	t.Run("Keyword Counts Once Per Utterance", func(t *testing.T) {
		state, err = registry.VoiceTranscript(state.SessionID, userID, "om namah shivaya om om")
		require.NoError(t, err)
		assert.Equal(t, 1, state.Count, "multiple keywords in one utterance count once")
	})

	t.Run("Punctuation And Case Ignored", func(t *testing.T) {
		state, err = registry.VoiceTranscript(state.SessionID, userID, "Hare Krishna!")
		require.NoError(t, err)
		assert.Equal(t, 2, state.Count)
	})

	t.Run("No Keyword No Count", func(t *testing.T) {
		state, err = registry.VoiceTranscript(state.SessionID, userID, "hello there how are you")
		require.NoError(t, err)
		assert.Equal(t, 2, state.Count)
	})

	t.Run("Wrong Event Type Rejected", func(t *testing.T) {
		_, err := registry.Increment(state.SessionID, userID)
		assert.ErrorIs(t, err, ErrWrongMode)
	})
}

func TestAudioMode(t *testing.T) {
	registry, completions := newTestRegistry()
	userID := uuid.New().String()

	state, err := registry.Start(userID, uuid.New().String(), 3, ModeAudio, Capabilities{AudioPlayback: true}, true)
	require.NoError(t, err)
	assert.True(t, state.AudioRunning)

	for i := 1; i <= 3; i++ {
		state, err = registry.AudioComplete(state.SessionID, userID)
		require.NoError(t, err)
		assert.Equal(t, i, state.Count)
	}

	assert.True(t, state.Completed)
	assert.False(t, state.AudioRunning, "playback stops at the target")
	assert.Len(t, *completions, 1)
}

func TestSessionOwnershipAndLookup(t *testing.T) {
	registry, _ := newTestRegistry()
	owner := uuid.New().String()
	intruder := uuid.New().String()

	state, err := registry.Start(owner, uuid.New().String(), 9, ModeManual, Capabilities{}, false)
	require.NoError(t, err)

	t.Run("Unknown Session", func(t *testing.T) {
		_, err := registry.Increment(uuid.New().String(), owner)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Other User Rejected", func(t *testing.T) {
		_, err := registry.Increment(state.SessionID, intruder)
		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("End Removes Session", func(t *testing.T) {
		require.NoError(t, registry.End(state.SessionID, owner))
		_, err := registry.Get(state.SessionID, owner)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestContainsSacredKeyword(t *testing.T) {
	assert.True(t, ContainsSacredKeyword("om"))
	assert.True(t, ContainsSacredKeyword("Jai Shri Rama"))
	assert.True(t, ContainsSacredKeyword("...shanti, shanti, shanti."))
	assert.False(t, ContainsSacredKeyword(""))
	assert.False(t, ContainsSacredKeyword("good morning"))
	assert.False(t, ContainsSacredKeyword("omelette"), "keywords match whole words only")
}
