// Package errors provides structured errors for game-server failures.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Server sentinels
	CodeMissingAccess Code = "MISSING_ACCESS"
	CodeNothingFound  Code = "NOTHING_FOUND"
	CodeCommentBanned Code = "COMMENT_BANNED"
	CodeUpstream      Code = "UPSTREAM"

	// Account errors
	CodeLoginFailure    Code = "LOGIN_FAILURE"
	CodeAccountDisabled Code = "ACCOUNT_DISABLED"
	CodeNotLoggedIn     Code = "NOT_LOGGED_IN"
	CodeNameTaken       Code = "NAME_TAKEN"
	CodeEmailTaken      Code = "EMAIL_TAKEN"
	CodeInvalidName     Code = "INVALID_NAME"
	CodeInvalidPassword Code = "INVALID_PASSWORD"
	CodeInvalidEmail    Code = "INVALID_EMAIL"

	// Local errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeDecode          Code = "DECODE_FAILED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeUnauthorized    Code = "UNAUTHORIZED"
)

// HTTPStatus maps codes to REST response statuses.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidArgument,
		CodeDecode,
		CodeNameTaken,
		CodeEmailTaken,
		CodeInvalidName,
		CodeInvalidPassword,
		CodeInvalidEmail:
		return http.StatusBadRequest

	case CodeLoginFailure,
		CodeNotLoggedIn,
		CodeUnauthorized:
		return http.StatusUnauthorized

	case CodeMissingAccess,
		CodeAccountDisabled,
		CodeCommentBanned:
		return http.StatusForbidden

	case CodeNothingFound,
		CodeNotFound:
		return http.StatusNotFound

	case CodeUpstream:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
