// Package identity talks to the hosted identity provider that owns user
// credentials: account registration, email verification and password
// authentication.
//
// # Overview
//
// Provider is the transport-agnostic contract the session layer depends on.
// CognitoProvider implements it against an Amazon Cognito user pool using
// the public (unauthenticated) app-client APIs: SignUp, ConfirmSignUp,
// ResendConfirmationCode and InitiateAuth with USER_PASSWORD_AUTH.
//
// # Errors
//
// Every failure is returned as *Error carrying a Kind. Kinds are derived from
// provider error codes through a fixed table, so another provider can be put
// behind Provider by supplying its own table. UserMessage turns a Kind into
// text that can be shown to the user as is.
package identity
