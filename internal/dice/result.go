package dice

import "fmt"

// Operator is a binary operator joining two sub-expressions.
type Operator string

const (
	OpAdd Operator = "+"
	OpSub Operator = "-"
)

// Result summarizes a dice formula: its bounds, expected value, one random
// sample and the canonical formula text.
//
// Invariant for leaf results: Min <= Max and Average == (Min+Max)/2.
// Composite results carry summed/differenced averages, not recomputed ones.
type Result struct {
	Min       int
	Max       int
	Average   float64
	Generated int
	Text      string
}

// Combine joins a and b with op componentwise. Text becomes a.Text+op+b.Text.
//
// Postcondition: returns an UnsupportedOperator error for any op other than
// OpAdd or OpSub.
func Combine(a, b Result, op Operator) (Result, error) {
	switch op {
	case OpAdd:
		return a.Add(b), nil
	case OpSub:
		return a.Sub(b), nil
	default:
		return Result{}, newError(UnsupportedOperator, string(op), "unsupported operator %q", string(op))
	}
}

// Add returns r + o.
func (r Result) Add(o Result) Result {
	return Result{
		Min:       r.Min + o.Min,
		Max:       r.Max + o.Max,
		Average:   r.Average + o.Average,
		Generated: r.Generated + o.Generated,
		Text:      r.Text + string(OpAdd) + o.Text,
	}
}

// Sub returns r - o.
func (r Result) Sub(o Result) Result {
	return Result{
		Min:       r.Min - o.Min,
		Max:       r.Max - o.Max,
		Average:   r.Average - o.Average,
		Generated: r.Generated - o.Generated,
		Text:      r.Text + string(OpSub) + o.Text,
	}
}

// String returns a one-line audit form:
//
//	"3d8+1: min=4 max=25 avg=14.5 rolled=17"
func (r Result) String() string {
	return fmt.Sprintf("%s: min=%d max=%d avg=%g rolled=%d", r.Text, r.Min, r.Max, r.Average, r.Generated)
}
