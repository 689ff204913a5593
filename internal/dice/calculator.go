package dice

import "go.uber.org/zap"

// Calculator evaluates requests with a fixed Source and logs every outcome.
// Successful calculations are logged at debug level; rejected requests at info
// level together with the error kind.
type Calculator struct {
	src    Source
	logger *zap.Logger
}

// NewCalculator creates a Calculator that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewCalculator(src Source, logger *zap.Logger) *Calculator {
	return &Calculator{src: src, logger: logger}
}

// Calculate normalizes, tokenizes and evaluates request.
//
// Postcondition: returns a Result or a *Error.
func (c *Calculator) Calculate(request string) (Result, error) {
	normalized := Normalize(request)
	tokens, err := Tokenize(normalized)
	if err != nil {
		c.reject(request, normalized, err)
		return Result{}, err
	}
	c.logger.Debug("tokenized request",
		zap.String("request", request),
		zap.Stringers("tokens", tokens),
	)

	result, err := Evaluate(tokens, c.src)
	if err != nil {
		c.reject(request, normalized, err)
		return Result{}, err
	}
	c.logger.Debug("dice formula evaluated",
		zap.String("text", result.Text),
		zap.Int("min", result.Min),
		zap.Int("max", result.Max),
		zap.Float64("average", result.Average),
		zap.Int("generated", result.Generated),
	)
	return result, nil
}

func (c *Calculator) reject(request, normalized string, err error) {
	c.logger.Info("dice request rejected",
		zap.String("request", request),
		zap.String("normalized", normalized),
		zap.Stringer("kind", KindOf(err)),
		zap.Error(err),
	)
}
