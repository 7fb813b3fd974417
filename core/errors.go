package core

import (
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TokenErrorBadInput           = "TOKEN_BAD_INPUT"
	TokenErrorSilentAuthFailed   = "TOKEN_SILENT_AUTH_FAILED"
	TokenErrorAuthorityRejected  = "TOKEN_AUTHORITY_REJECTED"
	TokenErrorCredentialNotFound = "TOKEN_CREDENTIAL_NOT_FOUND"
	TokenErrorInternal           = "TOKEN_INTERNAL_ERROR"
)

// ErrSilentAuthFailed marks the expected silent-flow outcome: no usable
// cached credential for the requested tuple. Callers branch to an
// interactive flow on it; it is not an authority failure.
var ErrSilentAuthFailed = errors.New("core: no cached token satisfies silent acquisition")

// ErrCredentialNotFound reports a missing application credential record.
var ErrCredentialNotFound = errors.New("core: application credential not found")

func tokenErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrSilentAuthFailed) {
		return newTokenError(err.Error(), goerrors.CategoryAuth, TokenErrorSilentAuthFailed)
	}
	if errors.Is(err, ErrCredentialNotFound) {
		return newTokenError(err.Error(), goerrors.CategoryNotFound, TokenErrorCredentialNotFound)
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureTokenErrorEnvelope(richErr)
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "required"),
		strings.Contains(msg, "invalid"),
		strings.Contains(msg, "is empty"):
		return newTokenError(err.Error(), goerrors.CategoryBadInput, TokenErrorBadInput)
	}

	// Anything else came out of the authority exchange; wrap without
	// rewriting its semantic content.
	return ensureTokenErrorEnvelope(
		goerrors.Wrap(err, goerrors.CategoryExternal, "authority exchange failed").
			WithTextCode(TokenErrorAuthorityRejected),
	)
}

// markAuthorityError classifies an error returned by an open authority
// session. Input validation never runs on that path, so anything that is not
// a known sentinel or an existing envelope is an exchange failure, whatever
// words its message happens to contain.
func markAuthorityError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrSilentAuthFailed) || errors.Is(err, ErrCredentialNotFound) {
		return err
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryExternal, "authority exchange failed").
		WithTextCode(TokenErrorAuthorityRejected)
}

func newTokenError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureTokenErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureTokenErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = tokenHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultTokenTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultTokenTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return TokenErrorBadInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return TokenErrorSilentAuthFailed
	case goerrors.CategoryNotFound:
		return TokenErrorCredentialNotFound
	case goerrors.CategoryExternal:
		return TokenErrorAuthorityRejected
	default:
		return TokenErrorInternal
	}
}

func tokenHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsSilentAuthFailed reports whether err is the recoverable silent-flow
// outcome rather than a fatal authority failure.
func IsSilentAuthFailed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrSilentAuthFailed) {
		return true
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TokenErrorSilentAuthFailed
	}
	return false
}

// IsBadInput reports whether err is a precondition failure detected before
// any network or cache activity.
func IsBadInput(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TokenErrorBadInput
	}
	return false
}
