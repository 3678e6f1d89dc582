package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// FunctionSchema describes a structured-output function exposed to the model.
type FunctionSchema struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Client abstracts the remote extraction backend. The three methods map to
// progressively more permissive output modes; callers try them in order.
type Client interface {
	// CallFunction requests structured output via function calling and
	// returns the raw function arguments.
	CallFunction(ctx context.Context, system, user string, fn FunctionSchema) (json.RawMessage, error)
	// CompleteJSON requests a completion constrained to a single JSON object.
	CompleteJSON(ctx context.Context, system, user string) (string, error)
	// CompleteText requests an unconstrained completion.
	CompleteText(ctx context.Context, system, user string) (string, error)
}

// ErrNoFunctionCall is returned when the model answered without invoking the
// requested function.
var ErrNoFunctionCall = errors.New("model did not return a function call")

// ErrEmptyResponse is returned when the model produced no content.
var ErrEmptyResponse = errors.New("empty response from model")
