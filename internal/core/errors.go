package core

import "errors"

var (
	ErrNetworkOrHTTP     = errors.New("completion request failed")
	ErrMalformedResponse = errors.New("malformed completion response")
	ErrRetriesExhausted  = errors.New("completion retries exhausted")
	ErrSuggestionParse   = errors.New("suggestions are not a JSON array of strings")
)

// User-facing status lines rendered inline by transports.
const (
	StatusConnectionTrouble = "Sorry, I'm having trouble connecting. Please try again later."
	StatusSuggestionFailed  = "Couldn't fetch suggestions right now."
)

type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindNetworkOrHTTP
	KindMalformedResponse
	KindRetriesExhausted
	KindSuggestionParse
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetworkOrHTTP:
		return "network_or_http"
	case KindMalformedResponse:
		return "malformed_response"
	case KindRetriesExhausted:
		return "retries_exhausted"
	case KindSuggestionParse:
		return "suggestion_parse"
	default:
		return "unknown"
	}
}

// KindOf classifies err. Terminal kinds win over the attempt-level cause they wrap.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrSuggestionParse):
		return KindSuggestionParse
	case errors.Is(err, ErrRetriesExhausted):
		return KindRetriesExhausted
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, ErrNetworkOrHTTP):
		return KindNetworkOrHTTP
	default:
		return KindUnknown
	}
}

// Retryable reports whether a single completion attempt that failed with err may be retried.
func Retryable(err error) bool {
	k := KindOf(err)
	return k == KindNetworkOrHTTP || k == KindMalformedResponse
}
