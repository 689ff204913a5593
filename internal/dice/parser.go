package dice

import "strconv"

// Limits on dice counts, face counts and constants.
const (
	MinValue = 1
	MaxValue = 1000
)

// evaluator builds the Result while walking the token stream; no tree is kept.
type evaluator struct {
	stream *tokenStream
	src    Source
}

// Evaluate computes the Result of a token sequence produced by Tokenize.
//
// Grammar:
//
//	expression := term (operator expression)?
//	term       := DICE | NUMBER [DICE]
//
// The right operand of an operator is the entire remaining expression, so
// chains are right-associative: 10-3-2 evaluates as 10-(3-2) = 9.
//
// Precondition: src must be non-nil.
func Evaluate(tokens []Token, src Source) (Result, error) {
	ev := &evaluator{stream: newTokenStream(tokens), src: src}
	return ev.readExpression()
}

// Calculate normalizes, tokenizes and evaluates request.
//
// Precondition: src must be non-nil.
// Postcondition: returns a Result or a *Error; never a partial Result.
func Calculate(request string, src Source) (Result, error) {
	tokens, err := Tokenize(Normalize(request))
	if err != nil {
		return Result{}, err
	}
	return Evaluate(tokens, src)
}

func (ev *evaluator) readExpression() (Result, error) {
	left, err := ev.readTerm()
	if err != nil {
		return Result{}, err
	}

	opTok, ok := ev.stream.read()
	if !ok {
		return left, nil
	}
	switch opTok.Kind {
	case KindDice, KindNumber:
		return Result{}, newError(MissingOperator, opTok.Text,
			"unexpected %s after expression with no operator", opTok)
	}

	// The right-hand side is evaluated before the operator symbol is checked,
	// so an error inside it takes precedence over UnsupportedOperator.
	right, err := ev.readExpression()
	if err != nil {
		return Result{}, err
	}
	return Combine(left, right, Operator(opTok.Text))
}

func (ev *evaluator) readTerm() (Result, error) {
	tok, ok := ev.stream.read()
	if !ok {
		return Result{}, newError(UnexpectedEndOfExpression, "", "unexpected end of expression")
	}

	switch tok.Kind {
	case KindDice:
		return ev.diceResult(tok.Text, 1)
	case KindNumber:
		next, ok := ev.stream.read()
		if ok && next.Kind == KindDice {
			multiplier, err := strconv.Atoi(tok.Text)
			if err != nil {
				return Result{}, newError(InvalidDiceSpec, tok.Text, "incorrect multiplier %q", tok.Text)
			}
			return ev.diceResult(next.Text, multiplier)
		}
		if ok {
			ev.stream.unread(next)
		}
		return numberResult(tok.Text)
	default:
		return Result{}, newError(UnexpectedOperator, tok.Text, "unexpected operator %q", tok.Text)
	}
}

// diceResult rolls multiplier dice with faceText faces.
func (ev *evaluator) diceResult(faceText string, multiplier int) (Result, error) {
	if multiplier < MinValue || multiplier > MaxValue {
		return Result{}, newError(InvalidDiceSpec, strconv.Itoa(multiplier),
			"incorrect multiplier %d: must be in [%d, %d]", multiplier, MinValue, MaxValue)
	}
	faces, err := strconv.Atoi(faceText)
	if err != nil {
		return Result{}, newError(InvalidDiceSpec, "d"+faceText, "incorrect dice faces count %q", faceText)
	}
	if faces < MinValue || faces > MaxValue {
		return Result{}, newError(InvalidDiceSpec, "d"+faceText,
			"incorrect dice faces count %d: must be in [%d, %d]", faces, MinValue, MaxValue)
	}

	generated := 0
	for i := 0; i < multiplier; i++ {
		generated += ev.src.Intn(faces) + 1
	}

	text := "d" + faceText
	if multiplier != 1 {
		text = strconv.Itoa(multiplier) + text
	}
	return Result{
		Min:       multiplier,
		Max:       faces * multiplier,
		Average:   float64(multiplier+faces*multiplier) / 2.0,
		Generated: generated,
		Text:      text,
	}, nil
}

func numberResult(text string) (Result, error) {
	n, err := strconv.Atoi(text)
	if err != nil {
		return Result{}, newError(InvalidConstant, text, "unsupported number %q", text)
	}
	if n < MinValue || n > MaxValue {
		return Result{}, newError(InvalidConstant, text,
			"unsupported number %d: must be in [%d, %d]", n, MinValue, MaxValue)
	}
	return Result{
		Min:       n,
		Max:       n,
		Average:   float64(n),
		Generated: n,
		Text:      strconv.Itoa(n),
	}, nil
}
