package calcserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/cory-johannsen/dicecalc/internal/dice"
	"github.com/cory-johannsen/dicecalc/internal/pipeline"
	"github.com/cory-johannsen/dicecalc/internal/recognition"
	"github.com/cory-johannsen/dicecalc/internal/storage/postgres"
)

// CalculatorService implements CalculatorServer over a Pipeline.
type CalculatorService struct {
	pipeline *pipeline.Pipeline
	logger   *zap.Logger
}

// NewCalculatorService creates the gRPC service.
//
// Precondition: pipeline and logger must be non-nil.
func NewCalculatorService(p *pipeline.Pipeline, logger *zap.Logger) *CalculatorService {
	return &CalculatorService{pipeline: p, logger: logger}
}

// Calculate implements CalculatorServer.
func (s *CalculatorService) Calculate(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	out, err := s.pipeline.Calculate(ctx, in.GetValue())
	if err != nil {
		return nil, s.toStatus(err)
	}
	return outcomeStruct(out)
}

// Recognize implements CalculatorServer.
func (s *CalculatorService) Recognize(ctx context.Context, in *wrapperspb.BytesValue) (*structpb.Struct, error) {
	out, err := s.pipeline.Recognize(ctx, bytes.NewReader(in.GetValue()))
	if err != nil {
		return nil, s.toStatus(err)
	}
	return outcomeStruct(out)
}

// History implements CalculatorServer.
func (s *CalculatorService) History(ctx context.Context, in *wrapperspb.Int32Value) (*structpb.Struct, error) {
	entries, err := s.pipeline.History(ctx, int(in.GetValue()))
	if err != nil {
		return nil, s.toStatus(err)
	}
	list := make([]any, 0, len(entries))
	for _, e := range entries {
		list = append(list, entryMap(e))
	}
	st, err := structpb.NewStruct(map[string]any{"entries": list})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding history: %v", err)
	}
	return st, nil
}

// toStatus maps pipeline errors onto gRPC status codes.
func (s *CalculatorService) toStatus(err error) error {
	var de *dice.Error
	switch {
	case errors.As(err, &de):
		return status.Errorf(codes.InvalidArgument, "%s: %s", de.Kind, de.Msg)
	case errors.Is(err, recognition.ErrNotRecognized), errors.Is(err, recognition.ErrMalformed):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, pipeline.ErrHistoryDisabled):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.Error("calculator request failed", zap.Error(err))
		return status.Error(codes.Internal, err.Error())
	}
}

func outcomeStruct(out pipeline.Outcome) (*structpb.Struct, error) {
	m := ResultMap(out.Result)
	m["phrase"] = out.Phrase
	if out.Rewritten != out.Phrase {
		m["rewritten"] = out.Rewritten
	}
	if out.EntryID != uuid.Nil {
		m["id"] = out.EntryID.String()
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encoding result: %v", err)
	}
	return st, nil
}

// ResultMap renders r with the field names used on the wire.
func ResultMap(r dice.Result) map[string]any {
	return map[string]any{
		"text":      r.Text,
		"min":       r.Min,
		"max":       r.Max,
		"average":   r.Average,
		"generated": r.Generated,
	}
}

// ResultFromStruct is the inverse of ResultMap for clients.
//
// Postcondition: returns an error when a field is missing or mistyped.
func ResultFromStruct(st *structpb.Struct) (dice.Result, error) {
	f := st.GetFields()
	var r dice.Result
	for _, key := range []string{"text", "min", "max", "average", "generated"} {
		if _, ok := f[key]; !ok {
			return dice.Result{}, fmt.Errorf("result struct missing %q", key)
		}
	}
	if _, ok := f["text"].GetKind().(*structpb.Value_StringValue); !ok {
		return dice.Result{}, fmt.Errorf("result field %q is not a string", "text")
	}
	for _, key := range []string{"min", "max", "average", "generated"} {
		if _, ok := f[key].GetKind().(*structpb.Value_NumberValue); !ok {
			return dice.Result{}, fmt.Errorf("result field %q is not a number", key)
		}
	}
	r.Text = f["text"].GetStringValue()
	r.Min = int(f["min"].GetNumberValue())
	r.Max = int(f["max"].GetNumberValue())
	r.Average = f["average"].GetNumberValue()
	r.Generated = int(f["generated"].GetNumberValue())
	return r, nil
}

func entryMap(e postgres.Entry) map[string]any {
	m := map[string]any{
		"id":         e.ID.String(),
		"request":    e.Request,
		"created_at": e.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if e.Succeeded() {
		m["result"] = map[string]any{
			"text":      e.Text,
			"min":       e.Min,
			"max":       e.Max,
			"average":   e.Average,
			"generated": e.Generated,
		}
	} else {
		m["error_kind"] = e.ErrorKind
	}
	return m
}
