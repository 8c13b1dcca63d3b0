package models

// SubmissionResult describes the outcome of a successful wallet submission.
type SubmissionResult struct {
	UserID      int64
	Wallet      string
	WalletCount int // wallets on file after this submission
	MaxWallets  int
	RoleID      *int64 // auto role configured at submission time, nil if none
	RoleGranted bool
	RoleErr     error // non-fatal: submission stands even when the grant fails
}
