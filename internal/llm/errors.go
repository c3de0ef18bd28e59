package llm

import "errors"

var (
	// ErrAuth indicates the provider rejected the API key.
	ErrAuth = errors.New("llm authentication failed")

	// ErrQuota indicates the provider rate limited or the quota ran out.
	ErrQuota = errors.New("llm quota exceeded")

	// ErrModelUnavailable indicates the configured model is missing or overloaded.
	ErrModelUnavailable = errors.New("llm model unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("llm request timed out")

	// ErrUpstream covers every other provider or transport failure.
	ErrUpstream = errors.New("llm upstream error")

	// ErrEmptyResponse indicates the provider answered without any text.
	ErrEmptyResponse = errors.New("llm returned no text")
)
