package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/rankpilot/rankpilot-api/pkg/ai"
)

// ErrInvalidAIOutput signals that the engine answered but the payload failed
// schema validation. Callers must treat this as a hard failure, never as an
// empty success.
var ErrInvalidAIOutput = errors.New("AI did not return valid data")

// ErrRejectedInput marks input failures detected after struct validation,
// such as content that is empty once markup is stripped.
var ErrRejectedInput = errors.New("invalid tool input")

func errValidation(msg string) error {
	return fmt.Errorf("%w: %s", ErrRejectedInput, msg)
}

// Toolbox bundles the seven tool invokers around a shared engine. Every
// invoker validates its input before any engine call, makes a single
// attempt, and rejects output that does not satisfy the tool's schema.
type Toolbox struct {
	engine    ai.Engine
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
	logger    zerolog.Logger
}

// New constructs a Toolbox instance.
func New(engine ai.Engine, validate *validator.Validate, logger zerolog.Logger) *Toolbox {
	return &Toolbox{
		engine:    engine,
		validate:  validate,
		sanitizer: bluemonday.StrictPolicy(),
		logger:    logger.With().Str("component", "toolbox").Logger(),
	}
}

// invoke runs one validated prompt exchange and decodes the engine output
// into out after checking it against schema.
func (t *Toolbox) invoke(ctx context.Context, system, user string, schema *jsonschema.Schema, out interface{}) error {
	raw, err := t.engine.Complete(ctx, ai.CompletionRequest{
		System:   system,
		User:     user,
		WantJSON: true,
	})
	if err != nil {
		return err
	}

	var document interface{}
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAIOutput, err)
	}

	if err := schema.Validate(document); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAIOutput, err)
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAIOutput, err)
	}

	return nil
}
