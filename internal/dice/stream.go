package dice

// tokenStream is a read cursor over a token slice with a single pushback slot.
type tokenStream struct {
	tokens []Token
	pos    int
	peeked *Token
}

func newTokenStream(tokens []Token) *tokenStream {
	return &tokenStream{tokens: tokens}
}

// read pops the next token. ok is false at end of stream.
func (s *tokenStream) read() (tok Token, ok bool) {
	if s.peeked != nil {
		tok = *s.peeked
		s.peeked = nil
		return tok, true
	}
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	tok = s.tokens[s.pos]
	s.pos++
	return tok, true
}

// unread pushes tok back so the next read returns it.
//
// Precondition: the pushback slot is empty. Panics otherwise.
func (s *tokenStream) unread(tok Token) {
	if s.peeked != nil {
		panic("dice: tokenStream.unread precondition violated: pushback slot already holds " + s.peeked.String())
	}
	s.peeked = &tok
}
