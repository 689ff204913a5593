package dice_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/dicecalc/internal/dice"
)

// fixedSource always returns the same offset, clamped to the die size.
type fixedSource struct{ v int }

func (f fixedSource) Intn(n int) int {
	if f.v >= n {
		return n - 1
	}
	return f.v
}

func highest() dice.Source { return fixedSource{v: 1 << 30} }
func lowest() dice.Source  { return fixedSource{v: 0} }

func TestCalculate_Simple(t *testing.T) {
	r, err := dice.Calculate("3d8+1", dice.NewCryptoSource())
	require.NoError(t, err)
	assert.Equal(t, 4, r.Min)
	assert.Equal(t, 25, r.Max)
	assert.InDelta(t, 14.5, r.Average, 1e-9)
	assert.GreaterOrEqual(t, r.Generated, 4)
	assert.LessOrEqual(t, r.Generated, 25)
	assert.Equal(t, "3d8+1", r.Text)
}

func TestCalculate_SpokenPhrase(t *testing.T) {
	r, err := dice.Calculate("2 д 6 + 3", highest())
	require.NoError(t, err)
	assert.Equal(t, "2d6+3", r.Text)
	assert.Equal(t, 15, r.Generated)
}

// TestCalculate_SpokenOperatorWord documents that operator words are letters
// and therefore collapse into the dice marker: "d8 плюс d6" reads as d8 d6.
func TestCalculate_SpokenOperatorWord(t *testing.T) {
	_, err := dice.Calculate("д 8 плюс d 6", lowest())
	assert.ErrorIs(t, err, dice.ErrMissingOperator)
}

func TestCalculate_SingleDie(t *testing.T) {
	r, err := dice.Calculate("d20", highest())
	require.NoError(t, err)
	assert.Equal(t, dice.Result{Min: 1, Max: 20, Average: 10.5, Generated: 20, Text: "d20"}, r)
}

func TestCalculate_Constant(t *testing.T) {
	r, err := dice.Calculate("7", lowest())
	require.NoError(t, err)
	assert.Equal(t, dice.Result{Min: 7, Max: 7, Average: 7, Generated: 7, Text: "7"}, r)
}

func TestCalculate_LeadingZerosCanonicalized(t *testing.T) {
	r, err := dice.Calculate("007+02d6", lowest())
	require.NoError(t, err)
	assert.Equal(t, "7+2d6", r.Text)
	assert.Equal(t, 9, r.Min)
}

// TestCalculate_RightAssociative pins the evaluation order: the right operand
// of an operator is the whole remaining expression.
func TestCalculate_RightAssociative(t *testing.T) {
	r, err := dice.Calculate("10-3-2", lowest())
	require.NoError(t, err)
	assert.Equal(t, 9, r.Min)
	assert.Equal(t, 9, r.Max)
	assert.Equal(t, 9, r.Generated)
	assert.Equal(t, "10-3-2", r.Text)

	r, err = dice.Calculate("d6-d6+d6", highest())
	require.NoError(t, err)
	assert.Equal(t, 1-(1+1), r.Min)
	assert.Equal(t, 6-(6+6), r.Max)
	assert.InDelta(t, 3.5-(3.5+3.5), r.Average, 1e-9)
}

// TestCalculate_TwoNumbersWithoutOperator documents that whitespace is noise:
// "3 8" normalizes to "38" and is a single constant.
func TestCalculate_TwoNumbersWithoutOperator(t *testing.T) {
	r, err := dice.Calculate("3 8", lowest())
	require.NoError(t, err)
	assert.Equal(t, 38, r.Min)
}

func TestCalculate_Errors(t *testing.T) {
	cases := []struct {
		in   string
		want dice.ErrorKind
	}{
		{"", dice.EmptyRequest},
		{"   ", dice.EmptyRequest},
		{"?!", dice.EmptyRequest},
		{"+3", dice.UnaryOperator},
		{"- d6", dice.UnaryOperator},
		{"d6d8", dice.MissingOperator},
		{"3d8d6", dice.MissingOperator},
		{"1+-2", dice.UnexpectedOperator},
		{"5+", dice.UnexpectedEndOfExpression},
		{"d0", dice.InvalidDiceSpec},
		{"d1001", dice.InvalidDiceSpec},
		{"0d6", dice.InvalidDiceSpec},
		{"1001d6", dice.InvalidDiceSpec},
		{"d", dice.InvalidDiceSpec},
		{"3d", dice.InvalidDiceSpec},
		{"99999999999999999999d6", dice.InvalidDiceSpec},
		{"d99999999999999999999", dice.InvalidDiceSpec},
		{"0", dice.InvalidConstant},
		{"1001", dice.InvalidConstant},
		{"d6+99999999999999999999", dice.InvalidConstant},
	}
	for _, tc := range cases {
		_, err := dice.Calculate(tc.in, lowest())
		require.Error(t, err, "Calculate(%q)", tc.in)
		assert.Equal(t, tc.want, dice.KindOf(err), "Calculate(%q) = %v", tc.in, err)
	}
}

func TestCalculate_ErrorsMatchSentinels(t *testing.T) {
	_, err := dice.Calculate("d1001", lowest())
	assert.True(t, errors.Is(err, dice.ErrInvalidDiceSpec))
	assert.False(t, errors.Is(err, dice.ErrInvalidConstant))

	var de *dice.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "d1001", de.Fragment)
}

func TestEvaluate_UnsupportedOperator(t *testing.T) {
	tokens := []dice.Token{
		{Kind: dice.KindNumber, Text: "2"},
		{Kind: dice.KindOperator, Text: "*"},
		{Kind: dice.KindNumber, Text: "3"},
	}
	_, err := dice.Evaluate(tokens, lowest())
	assert.ErrorIs(t, err, dice.ErrUnsupportedOperator)
}

func TestEvaluate_RightHandErrorBeforeUnsupportedOperator(t *testing.T) {
	tokens := []dice.Token{
		{Kind: dice.KindNumber, Text: "3"},
		{Kind: dice.KindOperator, Text: "*"},
		{Kind: dice.KindOperator, Text: "+"},
	}
	_, err := dice.Evaluate(tokens, lowest())
	assert.ErrorIs(t, err, dice.ErrUnexpectedOperator)
	assert.NotErrorIs(t, err, dice.ErrUnsupportedOperator)
}

func TestEvaluate_Empty(t *testing.T) {
	_, err := dice.Evaluate(nil, lowest())
	assert.ErrorIs(t, err, dice.ErrUnexpectedEndOfExpression)
}

func TestKindOf_NonDiceError(t *testing.T) {
	assert.Equal(t, dice.ErrorKind(0), dice.KindOf(errors.New("boom")))
	assert.Equal(t, "missing_operator", dice.MissingOperator.String())
}

// TestCalculate_DiceProperty verifies bounds and average for every valid NdM.
func TestCalculate_DiceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "count")
		m := rapid.IntRange(1, 1000).Draw(rt, "faces")
		r, err := dice.Calculate(fmt.Sprintf("%dd%d", n, m), dice.NewSeededSource(uint64(n*1000+m)))
		if err != nil {
			rt.Fatalf("Calculate(%dd%d): %v", n, m, err)
		}
		assert.Equal(rt, n, r.Min)
		assert.Equal(rt, n*m, r.Max)
		assert.InDelta(rt, float64(n+m*n)/2.0, r.Average, 1e-9)
		assert.GreaterOrEqual(rt, r.Generated, n)
		assert.LessOrEqual(rt, r.Generated, n*m)
	})
}

// TestCalculate_ConstantProperty verifies every field equals n for a bare number.
func TestCalculate_ConstantProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 1000).Draw(rt, "n")
		r, err := dice.Calculate(fmt.Sprint(n), lowest())
		if err != nil {
			rt.Fatalf("Calculate(%d): %v", n, err)
		}
		assert.Equal(rt, dice.Result{Min: n, Max: n, Average: float64(n), Generated: n, Text: fmt.Sprint(n)}, r)
	})
}

// TestCalculate_TextRoundTrip verifies re-evaluating Result.Text reproduces the
// bounds and average.
func TestCalculate_TextRoundTrip(t *testing.T) {
	term := rapid.OneOf(
		rapid.Custom(func(rt *rapid.T) string {
			return fmt.Sprintf("d%d", rapid.IntRange(1, 1000).Draw(rt, "faces"))
		}),
		rapid.Custom(func(rt *rapid.T) string {
			return fmt.Sprintf("%dd%d", rapid.IntRange(1, 20).Draw(rt, "count"), rapid.IntRange(1, 100).Draw(rt, "faces"))
		}),
		rapid.Custom(func(rt *rapid.T) string {
			return fmt.Sprint(rapid.IntRange(1, 1000).Draw(rt, "constant"))
		}),
	)
	rapid.Check(t, func(rt *rapid.T) {
		terms := rapid.SliceOfN(term, 1, 5).Draw(rt, "terms")
		expr := terms[0]
		for _, next := range terms[1:] {
			expr += rapid.SampledFrom([]string{" + ", " - ", "+", "-"}).Draw(rt, "op") + next
		}
		first, err := dice.Calculate(expr, dice.NewCryptoSource())
		if err != nil {
			rt.Fatalf("Calculate(%q): %v", expr, err)
		}
		second, err := dice.Calculate(first.Text, dice.NewCryptoSource())
		if err != nil {
			rt.Fatalf("re-evaluating %q: %v", first.Text, err)
		}
		assert.Equal(rt, first.Min, second.Min)
		assert.Equal(rt, first.Max, second.Max)
		assert.InDelta(rt, first.Average, second.Average, 1e-9)
		assert.Equal(rt, first.Text, second.Text)
	})
}

// TestCalculate_GeneratedWithinBounds verifies the random sample never leaves
// [Min, Max] for additive formulas.
func TestCalculate_GeneratedWithinBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(1, 10).Draw(rt, "a")
		b := rapid.IntRange(1, 100).Draw(rt, "b")
		c := rapid.IntRange(1, 1000).Draw(rt, "c")
		seed := rapid.Uint64().Draw(rt, "seed")
		r, err := dice.Calculate(fmt.Sprintf("%dd%d + d%d + %d", a, b, b, c), dice.NewSeededSource(seed))
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		assert.GreaterOrEqual(rt, r.Generated, r.Min)
		assert.LessOrEqual(rt, r.Generated, r.Max)
	})
}
