package models

// DefaultMaxWallets is the per-user submission cap applied to fresh installs.
const DefaultMaxWallets = 1

// Settings is the process-wide whitelist configuration and submission record.
// The JSON shape is the durable storage format, so field tags are part of the
// on-disk contract. Keys of SubmittedWallets serialize as strings.
type Settings struct {
	WhitelistChannelID *int64             `json:"whitelist_channel_id"`
	AutoRoleID         *int64             `json:"auto_role_id"`
	SubmittedWallets   map[int64][]string `json:"submitted_wallets"`
	WhitelistStatus    bool               `json:"whitelist_status"`
	MaxWallets         int                `json:"max_wallets"`
	DeleteOnLeave      bool               `json:"delete_on_leave"`
}

// DefaultSettings returns a fresh record with documented defaults:
// no channel or role configured, submissions open, cap of one wallet,
// delete-on-leave disabled.
func DefaultSettings() *Settings {
	return &Settings{
		SubmittedWallets: make(map[int64][]string),
		WhitelistStatus:  true,
		MaxWallets:       DefaultMaxWallets,
	}
}

// Clone returns a deep copy of the settings record.
func (s *Settings) Clone() *Settings {
	c := &Settings{
		SubmittedWallets: make(map[int64][]string, len(s.SubmittedWallets)),
		WhitelistStatus:  s.WhitelistStatus,
		MaxWallets:       s.MaxWallets,
		DeleteOnLeave:    s.DeleteOnLeave,
	}
	if s.WhitelistChannelID != nil {
		id := *s.WhitelistChannelID
		c.WhitelistChannelID = &id
	}
	if s.AutoRoleID != nil {
		id := *s.AutoRoleID
		c.AutoRoleID = &id
	}
	for userID, wallets := range s.SubmittedWallets {
		c.SubmittedWallets[userID] = append([]string(nil), wallets...)
	}
	return c
}

// WalletCount returns how many wallets a user has on file.
func (s *Settings) WalletCount(userID int64) int {
	return len(s.SubmittedWallets[userID])
}
