package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func humanPair() *GameSession {
	return &GameSession{
		ID: "GAME1234",
		Participants: []Player{
			{ID: "alice", DisplayName: "Alice"},
			{ID: "bob", DisplayName: "Bob"},
		},
		IsBot: false,
	}
}

func botSession() *GameSession {
	return &GameSession{
		ID:           "BOTGAME1",
		Participants: []Player{{ID: "alice", DisplayName: "Alice"}},
		IsBot:        true,
	}
}

func TestGuessValid(t *testing.T) {
	assert.True(t, GuessHuman.Valid())
	assert.True(t, GuessBot.Valid())
	assert.False(t, Guess("alien").Valid())
	assert.False(t, Guess("").Valid())
}

func TestHasParticipant(t *testing.T) {
	s := humanPair()
	assert.True(t, s.HasParticipant("alice"))
	assert.True(t, s.HasParticipant("bob"))
	assert.False(t, s.HasParticipant("mallory"))
}

func TestOpponent(t *testing.T) {
	s := humanPair()
	assert.Equal(t, PlayerID("bob"), s.Opponent("alice").ID)
	assert.Equal(t, PlayerID("alice"), s.Opponent("bob").ID)
}

func TestOpponentIsNilForBotSession(t *testing.T) {
	assert.Nil(t, botSession().Opponent("alice"))
}

func TestVerdictFor(t *testing.T) {
	human := humanPair()
	assert.True(t, human.VerdictFor(GuessHuman))
	assert.False(t, human.VerdictFor(GuessBot))

	bot := botSession()
	assert.True(t, bot.VerdictFor(GuessBot))
	assert.False(t, bot.VerdictFor(GuessHuman))
}
