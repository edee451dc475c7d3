package domain

// LeaderboardRegistration identifies one live-updating leaderboard message.
// Registrations are deleted when the underlying channel or message stops
// resolving.
type LeaderboardRegistration struct {
	ID        int64
	GuildID   string
	ChannelID string
	MessageID string
}

// ClaimCount is one row of the ranked claim-count view.
type ClaimCount struct {
	StaffID string
	Count   int
}
