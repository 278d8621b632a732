package domain

import (
	"errors"
	"fmt"
)

// TokenErrorKind classifies why a bearer token was rejected.
type TokenErrorKind string

const (
	TokenMalformed            TokenErrorKind = "malformed"
	TokenExpired              TokenErrorKind = "expired"
	TokenUnsupportedAlgorithm TokenErrorKind = "unsupported_algorithm"
	TokenInvalidSignature     TokenErrorKind = "invalid_signature"
)

// ErrInvalidToken matches every *TokenError.
var ErrInvalidToken = errors.New("invalid token")

// TokenError is returned by the token verifier. The kind is for logs and
// metrics only; clients just see an anonymous request.
type TokenError struct {
	Kind TokenErrorKind
	Err  error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("token %s", e.Kind)
	}
	return fmt.Sprintf("token %s: %v", e.Kind, e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

func (e *TokenError) Is(target error) bool { return target == ErrInvalidToken }

// TokenErrorKindOf extracts the kind from err, or "" if err is not a token error.
func TokenErrorKindOf(err error) TokenErrorKind {
	var te *TokenError
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}
