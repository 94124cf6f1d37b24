package llm

import "fmt"

// GenerationError reports a failed call to the text-generation capability.
// All structured-output endpoints (classify, clarify, plan, write, evaluate)
// surface this type.
type GenerationError struct {
	Endpoint string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation call %s failed: %v", e.Endpoint, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SearchError reports a failed call to the search capability. Individual
// search failures are expected and recovered by the caller.
type SearchError struct {
	Err error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search call failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

// DeliveryError reports a failed handoff of the final report.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("delivery failed: %v", e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
