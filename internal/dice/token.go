package dice

import "fmt"

// Kind is the type of a lexical token.
type Kind int

const (
	KindDice Kind = iota + 1
	KindNumber
	KindOperator
)

func (k Kind) String() string {
	switch k {
	case KindDice:
		return "Dice"
	case KindNumber:
		return "Number"
	case KindOperator:
		return "Operator"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Token is a single lexeme of a normalized request.
// Text holds the captured digits for Dice and Number tokens (the face count for
// Dice, possibly empty) and the operator symbol for Operator tokens.
type Token struct {
	Kind Kind
	Text string
}

// String renders the token as Kind("text"), e.g. Dice("8").
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}
