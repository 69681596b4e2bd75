package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Completion failure taxonomy. Provider clients wrap every failure in one of
// these sentinels so callers can branch with errors.Is without knowing which
// provider is behind the Client interface.
var (
	// ErrProviderUnavailable covers network failures, auth failures, and
	// provider-side outages. Not retried here; the user can resend.
	ErrProviderUnavailable = errors.New("completion provider unavailable")

	// ErrQuotaExceeded is a rate or credit limit signaled by the provider.
	ErrQuotaExceeded = errors.New("completion quota exceeded")

	// ErrMalformedResponse means the provider answered but the client could
	// not make sense of the payload.
	ErrMalformedResponse = errors.New("malformed completion response")
)

// quotaPhrases are provider wordings that indicate credit or rate exhaustion.
// Structured signals (status codes, error types) are checked first; these
// substrings are a fallback for gateways that only return prose. Known
// fragility inherited from the providers, not a contract.
var quotaPhrases = []string{
	"exceeded your monthly included credits",
	"insufficient_quota",
	"rate limit",
}

// Classify maps a provider error to the taxonomy above. status is the HTTP
// status code if known (0 otherwise), detail is whatever error text the
// provider produced.
func Classify(status int, detail string) error {
	switch status {
	case 402, 429:
		return fmt.Errorf("%w: %s", ErrQuotaExceeded, detail)
	}
	lower := strings.ToLower(detail)
	for _, phrase := range quotaPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: %s", ErrQuotaExceeded, detail)
		}
	}
	return fmt.Errorf("%w: %s", ErrProviderUnavailable, detail)
}
