// Package phrases holds the canned replies substituted when text generation
// is unavailable.
package phrases

import "github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"

// defaultPhrases is the ordered fallback set. Entries are written to pass as
// a distracted human chatting from a waiting room.
var defaultPhrases = []string{
	"haha yeah, I guess so",
	"hmm not sure what you mean",
	"lol fair enough",
	"sorry, got distracted for a sec. what were you saying?",
	"interesting, tell me more",
	"honestly no idea",
	"yeah same here",
	"ok but why though",
	"that's a good question actually",
	"been a long day, hard to think straight",
}

// Bank is a fixed ordered set of fallback phrases
type Bank struct {
	phrases []string
}

// NewBank creates a Bank with the default phrase set
func NewBank() *Bank {
	return NewBankWithPhrases(defaultPhrases)
}

// NewBankWithPhrases creates a Bank with a custom phrase set.
// An empty set falls back to the defaults so Pick never returns "".
func NewBankWithPhrases(phrases []string) *Bank {
	if len(phrases) == 0 {
		phrases = defaultPhrases
	}
	owned := make([]string, len(phrases))
	copy(owned, phrases)
	return &Bank{phrases: owned}
}

// Pick returns a uniformly-chosen phrase
func (b *Bank) Pick(rnd random.Random) string {
	return b.phrases[rnd.Intn(len(b.phrases))]
}

// Len returns the number of phrases in the bank
func (b *Bank) Len() int {
	return len(b.phrases)
}
