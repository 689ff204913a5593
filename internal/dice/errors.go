package dice

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a request could not be evaluated.
type ErrorKind int

const (
	// EmptyRequest: the normalized request contains nothing to tokenize.
	EmptyRequest ErrorKind = iota + 1
	// UnexpectedCharacter: a character outside {0-9, d, +, -} reached the lexer.
	UnexpectedCharacter
	// UnaryOperator: '+' or '-' appears before any operand.
	UnaryOperator
	// UnexpectedOperator: an expression starts with an operator.
	UnexpectedOperator
	// UnexpectedEndOfExpression: an operand was expected but the tokens ran out.
	UnexpectedEndOfExpression
	// MissingOperator: two operands are adjacent with no operator between them.
	MissingOperator
	// UnsupportedOperator: an operator other than '+' or '-'.
	UnsupportedOperator
	// InvalidDiceSpec: dice count or face count outside [1, 1000].
	InvalidDiceSpec
	// InvalidConstant: a bare number outside [1, 1000].
	InvalidConstant
)

var kindNames = map[ErrorKind]string{
	EmptyRequest:              "empty_request",
	UnexpectedCharacter:       "unexpected_character",
	UnaryOperator:             "unary_operator",
	UnexpectedOperator:        "unexpected_operator",
	UnexpectedEndOfExpression: "unexpected_end_of_expression",
	MissingOperator:           "missing_operator",
	UnsupportedOperator:       "unsupported_operator",
	InvalidDiceSpec:           "invalid_dice_spec",
	InvalidConstant:           "invalid_constant",
}

// String returns the snake_case name used in logs and persisted history.
func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("error_kind(%d)", int(k))
}

// Error is the single error type produced by the interpreter.
type Error struct {
	Kind     ErrorKind
	Fragment string // offending token or character; may be empty
	Msg      string
}

func (e *Error) Error() string {
	return "dice: " + e.Msg
}

// Is matches any *Error of the same Kind, so the sentinels below work with errors.Is.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// Sentinels for errors.Is comparisons.
var (
	ErrEmptyRequest              = &Error{Kind: EmptyRequest, Msg: "empty request"}
	ErrUnexpectedCharacter       = &Error{Kind: UnexpectedCharacter, Msg: "unexpected character"}
	ErrUnaryOperator             = &Error{Kind: UnaryOperator, Msg: "unary operator"}
	ErrUnexpectedOperator        = &Error{Kind: UnexpectedOperator, Msg: "unexpected operator"}
	ErrUnexpectedEndOfExpression = &Error{Kind: UnexpectedEndOfExpression, Msg: "unexpected end of expression"}
	ErrMissingOperator           = &Error{Kind: MissingOperator, Msg: "missing operator"}
	ErrUnsupportedOperator       = &Error{Kind: UnsupportedOperator, Msg: "unsupported operator"}
	ErrInvalidDiceSpec           = &Error{Kind: InvalidDiceSpec, Msg: "invalid dice spec"}
	ErrInvalidConstant           = &Error{Kind: InvalidConstant, Msg: "invalid constant"}
)

// KindOf returns the ErrorKind carried by err, or 0 when err is not a dice error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func newError(kind ErrorKind, fragment, format string, args ...any) *Error {
	return &Error{Kind: kind, Fragment: fragment, Msg: fmt.Sprintf(format, args...)}
}
