package phrases

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/mocks"
	"github.com/Relay-py/rulu-arya-and-the-sheep/internal/dependencies/random"
)

func TestPickNeverReturnsEmpty(t *testing.T) {
	bank := NewBank()
	rnd := random.New()

	for i := 0; i < 100; i++ {
		assert.NotEmpty(t, bank.Pick(rnd))
	}
}

func TestPickIsDeterministicWithFixedRandom(t *testing.T) {
	bank := NewBankWithPhrases([]string{"first", "second", "third"})

	rnd := mocks.NewMockRandom()
	rnd.QueueIntn(2, 0)

	assert.Equal(t, "third", bank.Pick(rnd))
	assert.Equal(t, "first", bank.Pick(rnd))
}

func TestEmptyCustomSetFallsBackToDefaults(t *testing.T) {
	bank := NewBankWithPhrases(nil)
	require.Positive(t, bank.Len())
	assert.NotEmpty(t, bank.Pick(mocks.NewMockRandom()))
}
