package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/repository"
)

// fakeTicketRepo mirrors the conditional-update semantics of the SQL
// repository in memory so transition races can be tested deterministically.
type fakeTicketRepo struct {
	mu   sync.Mutex
	seq  int64
	byID map[int64]*domain.Ticket

	// hideOpenLookup makes GetOpenByUser miss while Create still enforces
	// uniqueness, simulating two creates racing past the pre-check.
	hideOpenLookup bool
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{byID: make(map[int64]*domain.Ticket)}
}

func (r *fakeTicketRepo) Create(ctx context.Context, userID, channelID, guildID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.UserID == userID && t.GuildID == guildID && !t.IsClosed() {
			return nil, repository.ErrDuplicateOpenTicket
		}
	}
	r.seq++
	number := 0
	for _, t := range r.byID {
		if t.GuildID == guildID && t.TicketNumber > number {
			number = t.TicketNumber
		}
	}
	ticket := &domain.Ticket{
		ID:           r.seq,
		UserID:       userID,
		ChannelID:    channelID,
		GuildID:      guildID,
		Status:       domain.TicketStatusOpen,
		Priority:     domain.TicketPriorityLow,
		CreatedAt:    time.Now(),
		TicketNumber: number + 1,
	}
	r.byID[ticket.ID] = ticket
	return copyTicket(ticket), nil
}

func (r *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyTicket(t), nil
}

func (r *fakeTicketRepo) GetByChannel(ctx context.Context, channelID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.byID {
		if t.ChannelID == channelID {
			return copyTicket(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) GetOpenByUser(ctx context.Context, userID, guildID string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.hideOpenLookup {
		return nil, repository.ErrNotFound
	}
	for _, t := range r.byID {
		if t.UserID == userID && t.GuildID == guildID && !t.IsClosed() {
			return copyTicket(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeTicketRepo) Claim(ctx context.Context, id int64, staffID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.ClaimedBy != nil || t.IsClosed() {
		return false, nil
	}
	claimant := staffID
	t.ClaimedBy = &claimant
	t.Status = domain.TicketStatusClaimed
	return true, nil
}

func (r *fakeTicketRepo) Close(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.IsClosed() {
		return false, nil
	}
	now := time.Now()
	t.Status = domain.TicketStatusClosed
	t.ClosedAt = &now
	return true, nil
}

func (r *fakeTicketRepo) Escalate(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.IsClosed() || t.Status == domain.TicketStatusEscalated {
		return false, nil
	}
	t.Status = domain.TicketStatusEscalated
	return true, nil
}

func (r *fakeTicketRepo) UpdatePriority(ctx context.Context, id int64, priority domain.TicketPriority) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok || t.IsClosed() {
		return false, nil
	}
	t.Priority = priority
	return true, nil
}

func (r *fakeTicketRepo) UpdateChannel(ctx context.Context, id int64, channelID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	t.ChannelID = channelID
	return nil
}

func (r *fakeTicketRepo) TopClaimers(ctx context.Context, guildID string, limit int) ([]domain.ClaimCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, t := range r.byID {
		if t.GuildID == guildID && t.ClaimedBy != nil {
			counts[*t.ClaimedBy]++
		}
	}
	var result []domain.ClaimCount
	for staffID, count := range counts {
		result = append(result, domain.ClaimCount{StaffID: staffID, Count: count})
	}
	// Descending by count, ties by id for determinism.
	for i := 0; i < len(result); i++ {
		for j := i + 1; j < len(result); j++ {
			if result[j].Count > result[i].Count ||
				(result[j].Count == result[i].Count && result[j].StaffID < result[i].StaffID) {
				result[i], result[j] = result[j], result[i]
			}
		}
	}
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func copyTicket(t *domain.Ticket) *domain.Ticket {
	clone := *t
	if t.ClaimedBy != nil {
		v := *t.ClaimedBy
		clone.ClaimedBy = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		clone.ClosedAt = &v
	}
	return &clone
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs map[string]*domain.GuildConfig
}

func newFakeConfigRepo() *fakeConfigRepo {
	return &fakeConfigRepo{configs: make(map[string]*domain.GuildConfig)}
}

func (r *fakeConfigRepo) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		return nil, nil
	}
	clone := *cfg
	return &clone, nil
}

func (r *fakeConfigRepo) SetField(ctx context.Context, guildID string, field domain.ConfigField, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cfg, ok := r.configs[guildID]
	if !ok {
		cfg = &domain.GuildConfig{GuildID: guildID}
		r.configs[guildID] = cfg
	}
	v := value
	switch field {
	case domain.ConfigFieldLogsChannel:
		cfg.LogsChannelID = &v
	case domain.ConfigFieldTranscriptsChannel:
		cfg.TranscriptsChannelID = &v
	case domain.ConfigFieldTicketCategory:
		cfg.TicketCategoryID = &v
	case domain.ConfigFieldLowStaffRole:
		cfg.LowStaffRoleID = &v
	case domain.ConfigFieldHighStaffRole:
		cfg.HighStaffRoleID = &v
	default:
		return fmt.Errorf("unknown config field %q", field)
	}
	return nil
}

func (r *fakeConfigRepo) seed(cfg *domain.GuildConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[cfg.GuildID] = cfg
}

type fakeNoteRepo struct {
	mu    sync.Mutex
	seq   int64
	notes []domain.StaffNote
}

func (r *fakeNoteRepo) Create(ctx context.Context, note *domain.StaffNote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	note.ID = r.seq
	note.CreatedAt = time.Now()
	r.notes = append(r.notes, *note)
	return nil
}

func (r *fakeNoteRepo) ListByTicket(ctx context.Context, ticketID int64, limit int) ([]domain.StaffNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.StaffNote
	for i := len(r.notes) - 1; i >= 0 && len(result) < limit; i-- {
		if r.notes[i].TicketID == ticketID {
			result = append(result, r.notes[i])
		}
	}
	return result, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	seq     int64
	entries []domain.TicketLogEntry
}

func (r *fakeLogRepo) Create(ctx context.Context, entry *domain.TicketLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	entry.ID = r.seq
	entry.CreatedAt = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeLogRepo) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.TicketLogEntry
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].TicketID == ticketID {
			result = append(result, r.entries[i])
		}
	}
	return result, nil
}

type fakeRegRepo struct {
	mu   sync.Mutex
	seq  int64
	regs []domain.LeaderboardRegistration
}

func (r *fakeRegRepo) Create(ctx context.Context, reg *domain.LeaderboardRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	reg.ID = r.seq
	r.regs = append(r.regs, *reg)
	return nil
}

func (r *fakeRegRepo) List(ctx context.Context) ([]domain.LeaderboardRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.LeaderboardRegistration{}, r.regs...), nil
}

func (r *fakeRegRepo) DeleteByMessage(ctx context.Context, messageID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.regs[:0]
	for _, reg := range r.regs {
		if reg.MessageID != messageID {
			kept = append(kept, reg)
		}
	}
	r.regs = kept
	return nil
}

func (r *fakeRegRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.regs)
}

// fakePlatform is an in-memory platform.Client. Channels and messages marked
// lost return ErrReferenceLost from every resolving call.
type fakePlatform struct {
	mu       sync.Mutex
	botID    string
	seq      int
	channels map[string]*discordgo.Channel
	messages map[string]map[string]*discordgo.Message
	history  map[string][]*discordgo.Message
	lost     map[string]bool
	deleted  []string
	edits    int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		botID:    "bot-1",
		channels: make(map[string]*discordgo.Channel),
		messages: make(map[string]map[string]*discordgo.Message),
		history:  make(map[string][]*discordgo.Message),
		lost:     make(map[string]bool),
	}
}

func (p *fakePlatform) BotUserID() string { return p.botID }

func (p *fakePlatform) markLost(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lost[id] = true
}

func (p *fakePlatform) seedChannel(id, name string) *discordgo.Channel {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := &discordgo.Channel{ID: id, Name: name}
	p.channels[id] = ch
	return ch
}

func (p *fakePlatform) seedMessage(channelID, messageID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.messages[channelID] == nil {
		p.messages[channelID] = make(map[string]*discordgo.Message)
	}
	p.messages[channelID][messageID] = &discordgo.Message{ID: messageID, ChannelID: channelID}
}

func (p *fakePlatform) lostErr(id string) error {
	return fmt.Errorf("%s: %w", id, platform.ErrReferenceLost)
}

func (p *fakePlatform) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] {
		return nil, p.lostErr(channelID)
	}
	ch, ok := p.channels[channelID]
	if !ok {
		return nil, p.lostErr(channelID)
	}
	return ch, nil
}

func (p *fakePlatform) Message(ctx context.Context, channelID, messageID string) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] || p.lost[messageID] {
		return nil, p.lostErr(messageID)
	}
	msg, ok := p.messages[channelID][messageID]
	if !ok {
		return nil, p.lostErr(messageID)
	}
	return msg, nil
}

func (p *fakePlatform) SendMessage(ctx context.Context, channelID string, msg platform.Message) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] {
		return nil, p.lostErr(channelID)
	}
	p.seq++
	out := &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", p.seq),
		ChannelID: channelID,
		Content:   msg.Content,
	}
	if msg.Embed != nil {
		out.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	if p.messages[channelID] == nil {
		p.messages[channelID] = make(map[string]*discordgo.Message)
	}
	p.messages[channelID][out.ID] = out
	return out, nil
}

func (p *fakePlatform) EditMessage(ctx context.Context, channelID, messageID string, msg platform.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] || p.lost[messageID] {
		return p.lostErr(messageID)
	}
	existing, ok := p.messages[channelID][messageID]
	if !ok {
		return p.lostErr(messageID)
	}
	existing.Content = msg.Content
	if msg.Embed != nil {
		existing.Embeds = []*discordgo.MessageEmbed{msg.Embed}
	}
	p.edits++
	return nil
}

func (p *fakePlatform) SendFile(ctx context.Context, channelID string, file platform.File) (*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] {
		return nil, p.lostErr(channelID)
	}
	if _, err := io.ReadAll(file.Reader); err != nil {
		return nil, err
	}
	p.seq++
	out := &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", p.seq),
		ChannelID: channelID,
		Attachments: []*discordgo.MessageAttachment{
			{Filename: file.Name, URL: "https://files.example/" + file.Name},
		},
	}
	if p.messages[channelID] == nil {
		p.messages[channelID] = make(map[string]*discordgo.Message)
	}
	p.messages[channelID][out.ID] = out
	return out, nil
}

func (p *fakePlatform) CreateTextChannel(ctx context.Context, guildID string, create platform.ChannelCreate) (*discordgo.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	ch := &discordgo.Channel{
		ID:       fmt.Sprintf("chan-%d", p.seq),
		Name:     create.Name,
		GuildID:  guildID,
		ParentID: create.ParentID,
	}
	for _, ow := range create.Overwrites {
		ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
			ID:    ow.ID,
			Type:  ow.Type,
			Allow: ow.Allow,
			Deny:  ow.Deny,
		})
	}
	p.channels[ch.ID] = ch
	return ch, nil
}

func (p *fakePlatform) RenameChannel(ctx context.Context, channelID, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[channelID]
	if !ok {
		return p.lostErr(channelID)
	}
	ch.Name = name
	return nil
}

func (p *fakePlatform) DeleteChannel(ctx context.Context, channelID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.channels, channelID)
	p.deleted = append(p.deleted, channelID)
	return nil
}

func (p *fakePlatform) UpsertOverwrite(ctx context.Context, channelID string, ow platform.Overwrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[channelID]
	if !ok {
		return p.lostErr(channelID)
	}
	for _, existing := range ch.PermissionOverwrites {
		if existing.ID == ow.ID {
			existing.Allow = ow.Allow
			existing.Deny = ow.Deny
			return nil
		}
	}
	ch.PermissionOverwrites = append(ch.PermissionOverwrites, &discordgo.PermissionOverwrite{
		ID:    ow.ID,
		Type:  ow.Type,
		Allow: ow.Allow,
		Deny:  ow.Deny,
	})
	return nil
}

func (p *fakePlatform) DeleteOverwrite(ctx context.Context, channelID, targetID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[channelID]
	if !ok {
		return p.lostErr(channelID)
	}
	kept := ch.PermissionOverwrites[:0]
	for _, existing := range ch.PermissionOverwrites {
		if existing.ID != targetID {
			kept = append(kept, existing)
		}
	}
	ch.PermissionOverwrites = kept
	return nil
}

func (p *fakePlatform) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	return &discordgo.Member{User: &discordgo.User{ID: userID, Username: "user-" + userID}}, nil
}

func (p *fakePlatform) ChannelMessages(ctx context.Context, channelID string, limit int, beforeID string) ([]*discordgo.Message, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lost[channelID] {
		return nil, p.lostErr(channelID)
	}
	if beforeID != "" {
		return nil, nil
	}
	msgs := p.history[channelID]
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (p *fakePlatform) overwriteCount(channelID, targetID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch, ok := p.channels[channelID]
	if !ok {
		return 0
	}
	count := 0
	for _, ow := range ch.PermissionOverwrites {
		if ow.ID == targetID {
			count++
		}
	}
	return count
}

func (p *fakePlatform) editCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.edits
}

func (p *fakePlatform) deletedChannels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.deleted...)
}
