package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

func TestCalculator_LogsEvaluation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calc := dice.NewCalculator(lowest(), zap.New(core))

	r, err := calc.Calculate("2d6 + 3")
	require.NoError(t, err)
	assert.Equal(t, 5, r.Generated)

	entries := logs.FilterMessage("dice formula evaluated").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "2d6+3", fields["text"])
	assert.Equal(t, int64(15), fields["max"])
	assert.Equal(t, 1, logs.FilterMessage("tokenized request").Len())
}

func TestCalculator_LogsRejection(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calc := dice.NewCalculator(lowest(), zap.New(core))

	_, err := calc.Calculate("d1001")
	require.ErrorIs(t, err, dice.ErrInvalidDiceSpec)

	entries := logs.FilterMessage("dice request rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "invalid_dice_spec", entries[0].ContextMap()["kind"])
}

func TestCalculator_LexerFailureLogged(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	calc := dice.NewCalculator(lowest(), zap.New(core))

	_, err := calc.Calculate("")
	require.ErrorIs(t, err, dice.ErrEmptyRequest)
	assert.Equal(t, 1, logs.FilterMessage("dice request rejected").Len())
	assert.Equal(t, 0, logs.FilterMessage("tokenized request").Len())
}
