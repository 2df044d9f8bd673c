package store

// PairingStore links an external channel identity (a Telegram user ID, a
// Discord user ID) to the single local agent this build runs, gating
// access until a human approves the pairing out of band.
type PairingStore interface {
	IsPaired(externalUserID, channel string) bool
	RequestPairing(externalUserID, channel, chatID, agentID string) (code string, err error)
	ApprovePairing(code string) (externalUserID, channel, chatID string, err error)
}
