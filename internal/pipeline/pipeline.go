// Package pipeline wires the dice interpreter to its collaborators: phrase
// rewriting scripts, recognizer payloads and calculation history. It is the
// transport-free core shared by the CLI and the gRPC service.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/dicecalc/internal/dice"
	"github.com/cory-johannsen/dicecalc/internal/recognition"
	"github.com/cory-johannsen/dicecalc/internal/storage/postgres"
)

// ErrHistoryDisabled is returned by History when no store is configured.
var ErrHistoryDisabled = errors.New("calculation history is disabled")

// Rewriter rewrites a recognized phrase before it is normalized.
type Rewriter interface {
	Rewrite(phrase string) string
}

// HistoryStore persists calculations.
type HistoryStore interface {
	Record(ctx context.Context, e postgres.Entry) (postgres.Entry, error)
	Recent(ctx context.Context, limit int) ([]postgres.Entry, error)
}

// Outcome is the result of running a phrase through the pipeline.
type Outcome struct {
	// Phrase is the text as received (or as recognized).
	Phrase string
	// Rewritten is Phrase after script rewriting; equal to Phrase without scripts.
	Rewritten string
	Result    dice.Result
	// EntryID identifies the history record; uuid.Nil when history is off or
	// recording failed.
	EntryID uuid.UUID
}

// Pipeline runs rewrite → calculate → record.
//
// Pipeline is safe for concurrent use when its collaborators are.
type Pipeline struct {
	calc         *dice.Calculator
	rewriter     Rewriter
	history      HistoryStore
	historyLimit int
	logger       *zap.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRewriter enables phrase rewriting.
func WithRewriter(r Rewriter) Option {
	return func(p *Pipeline) { p.rewriter = r }
}

// WithHistory enables recording; limit caps History queries.
//
// Precondition: limit > 0.
func WithHistory(h HistoryStore, limit int) Option {
	return func(p *Pipeline) {
		p.history = h
		p.historyLimit = limit
	}
}

// New creates a Pipeline around calc.
//
// Precondition: calc and logger must be non-nil.
func New(calc *dice.Calculator, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{calc: calc, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Calculate evaluates phrase. Failed calculations are recorded too; a history
// failure is logged and never fails the calculation.
//
// Postcondition: returns an Outcome, or the *dice.Error from the interpreter
// together with an Outcome carrying only Phrase, Rewritten and EntryID.
func (p *Pipeline) Calculate(ctx context.Context, phrase string) (Outcome, error) {
	out := Outcome{Phrase: phrase, Rewritten: phrase}
	if p.rewriter != nil {
		out.Rewritten = p.rewriter.Rewrite(phrase)
	}

	res, err := p.calc.Calculate(out.Rewritten)
	out.EntryID = p.record(ctx, out.Rewritten, res, err)
	if err != nil {
		return out, err
	}
	out.Result = res
	return out, nil
}

// Recognize decodes a recognizer XML payload and evaluates its best variant.
//
// Postcondition: returns recognition.ErrNotRecognized (wrapped) for failed
// recognitions, a decoding error, or the result of Calculate.
func (p *Pipeline) Recognize(ctx context.Context, payload io.Reader) (Outcome, error) {
	results, err := recognition.Parse(payload)
	if err != nil {
		return Outcome{}, err
	}
	phrase, err := results.Best()
	if err != nil {
		return Outcome{}, fmt.Errorf("recognizer response: %w", err)
	}
	p.logger.Debug("speech recognized",
		zap.String("phrase", phrase),
		zap.Int("variants", len(results.Variants)),
	)
	return p.Calculate(ctx, phrase)
}

// History returns up to limit recent calculations, newest first. A limit
// outside [1, configured limit] is clamped.
func (p *Pipeline) History(ctx context.Context, limit int) ([]postgres.Entry, error) {
	if p.history == nil {
		return nil, ErrHistoryDisabled
	}
	if limit <= 0 || limit > p.historyLimit {
		limit = p.historyLimit
	}
	return p.history.Recent(ctx, limit)
}

func (p *Pipeline) record(ctx context.Context, request string, res dice.Result, calcErr error) uuid.UUID {
	if p.history == nil {
		return uuid.Nil
	}
	stored, err := p.history.Record(ctx, postgres.NewEntry(request, res, calcErr))
	if err != nil {
		p.logger.Warn("recording calculation failed",
			zap.String("request", request),
			zap.Error(err),
		)
		return uuid.Nil
	}
	return stored.ID
}
