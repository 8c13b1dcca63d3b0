package service

import "errors"

var (
	// ErrWhitelistClosed is returned by Submit while submissions are disabled.
	ErrWhitelistClosed = errors.New("whitelist is closed")

	// ErrLimitReached is returned by Submit when the user already has
	// max_wallets entries on file.
	ErrLimitReached = errors.New("wallet limit reached")

	// ErrInvalidMaxWallets is returned by SetMaxWallets for a non-positive cap.
	ErrInvalidMaxWallets = errors.New("max wallets must be a positive number")
)
