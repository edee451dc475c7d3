package domain

// GuildConfig holds the per-guild ticket system settings. Every field is
// nullable until an administrator sets it.
type GuildConfig struct {
	GuildID              string
	LogsChannelID        *string
	TranscriptsChannelID *string
	TicketCategoryID     *string
	LowStaffRoleID       *string
	HighStaffRoleID      *string
}

// ConfigField names a single settable GuildConfig column.
type ConfigField string

const (
	ConfigFieldLogsChannel        ConfigField = "logs_channel_id"
	ConfigFieldTranscriptsChannel ConfigField = "transcripts_channel_id"
	ConfigFieldTicketCategory     ConfigField = "ticket_category_id"
	ConfigFieldLowStaffRole       ConfigField = "low_staff_role_id"
	ConfigFieldHighStaffRole      ConfigField = "high_staff_role_id"
)

// FullyConfigured reports whether all five settings required for ticket
// creation are present.
func (c *GuildConfig) FullyConfigured() bool {
	if c == nil {
		return false
	}
	return c.LogsChannelID != nil &&
		c.TranscriptsChannelID != nil &&
		c.TicketCategoryID != nil &&
		c.LowStaffRoleID != nil &&
		c.HighStaffRoleID != nil
}
