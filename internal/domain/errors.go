package domain

import "errors"

// Sentinel errors for the failure domains in the account-linking and transfer
// flows. Each external hop gets its own sentinel so callers can tell which
// collaborator failed without string matching.
var (
	// ErrInvalidCredentials is returned when the identity provider rejects a
	// sign-in attempt.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrProfileCreation signals that the identity-provider account was
	// created but the local profile could not be persisted. The user exists
	// upstream and is in a recoverable but inconsistent state.
	ErrProfileCreation = errors.New("profile creation failed after account creation")

	// ErrTokenExchange is returned when the public link token could not be
	// exchanged for an access token. No side effects exist at this point.
	ErrTokenExchange = errors.New("public token exchange failed")

	// ErrAccountFetch is returned when account metadata could not be fetched
	// with a freshly exchanged access token.
	ErrAccountFetch = errors.New("account fetch failed")

	// ErrProcessorToken is returned when the aggregation provider refuses to
	// mint a processor token for the selected account.
	ErrProcessorToken = errors.New("processor token creation failed")

	// ErrFundingSource is returned when the payments processor rejects the
	// funding-source creation.
	ErrFundingSource = errors.New("funding source creation failed")

	// ErrTransferFailed is returned when the payments processor rejects a
	// funds transfer between two funding sources.
	ErrTransferFailed = errors.New("transfer failed")

	// ErrPersistence wraps document-store write failures.
	ErrPersistence = errors.New("persistence failed")

	// ErrBankNotFound is returned when a referenced bank account record does
	// not exist. Point lookups return (nil, nil) instead; this sentinel is for
	// paths that require the record to exist, like resolving a transfer
	// recipient.
	ErrBankNotFound = errors.New("bank account not found")
)
