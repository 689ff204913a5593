package dice

import "strings"

// lexState is the kind of token currently being accumulated.
type lexState int

const (
	stateNone lexState = iota
	stateDice
	stateNumber
	stateOperator
)

func (s lexState) kind() Kind {
	switch s {
	case stateDice:
		return KindDice
	case stateNumber:
		return KindNumber
	default:
		return KindOperator
	}
}

// Tokenize splits a normalized request into tokens.
//
// Precondition: s should come from Normalize; other characters are rejected
// with UnexpectedCharacter.
// Postcondition: returns at least one token, or a *Error.
func Tokenize(s string) ([]Token, error) {
	var (
		tokens []Token
		state  = stateNone
		acc    strings.Builder
	)

	emit := func() {
		tokens = append(tokens, Token{Kind: state.kind(), Text: acc.String()})
		acc.Reset()
	}

	for _, ch := range s {
		switch {
		case ch == '+' || ch == '-':
			if state == stateNone {
				return nil, newError(UnaryOperator, string(ch),
					"unary operator %q at the start of request is not supported", ch)
			}
			emit()
			state = stateOperator
			acc.WriteRune(ch)
		case ch >= '0' && ch <= '9':
			if state == stateOperator {
				emit()
				state = stateNumber
			} else if state == stateNone {
				state = stateNumber
			}
			acc.WriteRune(ch)
		case ch == 'd':
			if state != stateNone {
				emit()
			}
			state = stateDice
		default:
			return nil, newError(UnexpectedCharacter, string(ch), "unexpected character %q", ch)
		}
	}

	if state == stateNone {
		return nil, newError(EmptyRequest, "", "empty request")
	}
	emit()
	return tokens, nil
}
