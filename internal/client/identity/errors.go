package identity

import (
	"context"
	"errors"
	"net"

	"github.com/aws/smithy-go"
)

// Kind classifies identity provider failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindUsernameExists
	KindNotAuthorized
	KindUserNotFound
	KindUserNotConfirmed
	KindCodeMismatch
	KindExpiredCode
	KindInvalidPassword
	KindInvalidParameter
	KindLimitExceeded
	KindChallengeRequired
	KindTransport
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindUsernameExists:    "username_exists",
	KindNotAuthorized:     "not_authorized",
	KindUserNotFound:      "user_not_found",
	KindUserNotConfirmed:  "user_not_confirmed",
	KindCodeMismatch:      "code_mismatch",
	KindExpiredCode:       "expired_code",
	KindInvalidPassword:   "invalid_password",
	KindInvalidParameter:  "invalid_parameter",
	KindLimitExceeded:     "limit_exceeded",
	KindChallengeRequired: "challenge_required",
	KindTransport:         "transport",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return kindNames[KindUnknown]
}

// cognitoKinds maps Cognito error codes to kinds.
var cognitoKinds = map[string]Kind{
	"UsernameExistsException":        KindUsernameExists,
	"AliasExistsException":           KindUsernameExists,
	"NotAuthorizedException":         KindNotAuthorized,
	"UserNotFoundException":          KindUserNotFound,
	"UserNotConfirmedException":      KindUserNotConfirmed,
	"CodeMismatchException":          KindCodeMismatch,
	"ExpiredCodeException":           KindExpiredCode,
	"InvalidPasswordException":       KindInvalidPassword,
	"InvalidParameterException":      KindInvalidParameter,
	"LimitExceededException":         KindLimitExceeded,
	"TooManyRequestsException":       KindLimitExceeded,
	"TooManyFailedAttemptsException": KindLimitExceeded,
	"CodeDeliveryFailureException":   KindTransport,
}

var userMessages = map[Kind]string{
	KindUsernameExists:    "That username is already taken. Please choose another one.",
	KindNotAuthorized:     "Incorrect username or password.",
	KindUserNotFound:      "Incorrect username or password.",
	KindUserNotConfirmed:  "Please verify your email before signing in.",
	KindCodeMismatch:      "The verification code is incorrect.",
	KindExpiredCode:       "The verification code has expired. Request a new one.",
	KindInvalidPassword:   "The password does not meet the requirements.",
	KindLimitExceeded:     "Too many attempts. Please wait a moment and try again.",
	KindChallengeRequired: "This account needs an additional sign-in step that is not supported here.",
	KindTransport:         "Unable to reach the sign-in service. Check your connection and try again.",
}

// Error is a classified identity provider failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return "identity: " + e.Kind.String() + ": " + e.Message
	}
	if e.Err != nil {
		return "identity: " + e.Kind.String() + ": " + e.Err.Error()
	}
	return "identity: " + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessage returns the user-facing text for err's kind, or fallback when
// the kind has no dedicated message.
func UserMessage(err error, fallback string) string {
	if msg, ok := userMessages[KindOf(err)]; ok {
		return msg
	}
	return fallback
}

// classify wraps a raw provider error into *Error using codes.
func classify(err error, codes map[string]Kind) error {
	if err == nil {
		return nil
	}

	var already *Error
	if errors.As(err, &already) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		kind, ok := codes[apiErr.ErrorCode()]
		if !ok {
			kind = KindUnknown
		}
		return &Error{Kind: kind, Message: apiErr.ErrorMessage(), Err: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || errors.As(err, &netErr) {
		return &Error{Kind: KindTransport, Err: err}
	}

	return &Error{Kind: KindUnknown, Err: err}
}
