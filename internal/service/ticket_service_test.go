package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	apperrors "github.com/ddex3/Shaked-Discord-Ticket-System/pkg/util"
)

const (
	testGuild        = "guild-1"
	testLowStaffRole = "role-low"
	testHighRole     = "role-high"
)

func strptr(s string) *string { return &s }

func fullConfig() *domain.GuildConfig {
	return &domain.GuildConfig{
		GuildID:              testGuild,
		LogsChannelID:        strptr("logs-chan"),
		TranscriptsChannelID: strptr("transcripts-chan"),
		TicketCategoryID:     strptr("category-1"),
		LowStaffRoleID:       strptr(testLowStaffRole),
		HighStaffRoleID:      strptr(testHighRole),
	}
}

type ticketFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	notes    *fakeNoteRepo
	configs  *fakeConfigRepo
	platform *fakePlatform
}

func newTicketFixture(t *testing.T) *ticketFixture {
	t.Helper()
	tickets := newFakeTicketRepo()
	notes := &fakeNoteRepo{}
	configs := newFakeConfigRepo()
	configs.seed(fullConfig())
	plat := newFakePlatform()
	plat.seedChannel("logs-chan", "ticket-logs")
	plat.seedChannel("transcripts-chan", "transcripts")

	logger := zap.NewNop()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		NoteRepo:    notes,
		ConfigRepo:  configs,
		Platform:    plat,
		Transcripts: NewTranscriptService(plat, logger),
		Logger:      logger,
		CloseGrace:  time.Millisecond,
	})
	return &ticketFixture{svc: svc, tickets: tickets, notes: notes, configs: configs, platform: plat}
}

func (f *ticketFixture) openTicket(t *testing.T, userID string) *domain.Ticket {
	t.Helper()
	ticket, _, err := f.svc.Create(context.Background(), Actor{UserID: userID}, testGuild, "user-"+userID)
	require.NoError(t, err)
	return ticket
}

func staffActor(userID string) Actor {
	return Actor{UserID: userID, Roles: []string{testLowStaffRole}}
}

func TestCreateRequiresFullConfiguration(t *testing.T) {
	f := newTicketFixture(t)
	f.configs.seed(&domain.GuildConfig{GuildID: testGuild, LogsChannelID: strptr("logs-chan")})

	_, _, err := f.svc.Create(context.Background(), Actor{UserID: "u1"}, testGuild, "alice")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConfigIncomplete))
}

func TestCreateOpensPrivateChannel(t *testing.T) {
	f := newTicketFixture(t)

	ticket, cfg, err := f.svc.Create(context.Background(), Actor{UserID: "u1"}, testGuild, "Alice Smith")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Equal(t, 1, ticket.TicketNumber)
	assert.Nil(t, ticket.ClaimedBy)

	ch, err := f.platform.Channel(context.Background(), ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "ticket-alice-smith", ch.Name)
	assert.Equal(t, "category-1", ch.ParentID)
	// guild deny, owner, bot, two staff roles
	assert.Len(t, ch.PermissionOverwrites, 5)
}

func TestCreateRejectsSecondOpenTicket(t *testing.T) {
	f := newTicketFixture(t)
	first := f.openTicket(t, "u1")

	_, _, err := f.svc.Create(context.Background(), Actor{UserID: "u1"}, testGuild, "alice")
	require.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateTicket))
	assert.Contains(t, apperrors.ToDomainError(err).UserMessage(), first.ChannelID)
}

func TestCreateAllowsNewTicketAfterClose(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Close(context.Background(), Actor{UserID: "u1"}, ticket.ChannelID, "resolved")
	require.NoError(t, err)

	second := f.openTicket(t, "u1")
	assert.Equal(t, 2, second.TicketNumber)
}

func TestCreateCleansUpChannelWhenInsertRaces(t *testing.T) {
	f := newTicketFixture(t)
	f.openTicket(t, "u1")

	// The pre-check misses but the insert still hits the uniqueness guard,
	// which is what two simultaneous creates look like.
	f.tickets.hideOpenLookup = true
	_, _, err := f.svc.Create(context.Background(), Actor{UserID: "u1"}, testGuild, "alice")
	require.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateTicket))

	assert.Len(t, f.platform.deletedChannels(), 1, "orphaned channel should be removed")
}

func TestClaimRequiresStaff(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Claim(context.Background(), Actor{UserID: "u2"}, ticket.ChannelID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestClaimSetsClaimant(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	claimed, err := f.svc.Claim(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClaimed, claimed.Status)
	require.NotNil(t, claimed.ClaimedBy)
	assert.Equal(t, "staff-1", *claimed.ClaimedBy)
}

func TestClaimExactlyOneWinner(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, staffID := range []string{"staff-a", "staff-b"} {
		wg.Add(1)
		go func(slot int, id string) {
			defer wg.Done()
			_, results[slot] = f.svc.Claim(context.Background(), staffActor(id), ticket.ChannelID)
		}(i, staffID)
	}
	wg.Wait()

	winners, losers := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		case apperrors.IsCode(err, apperrors.CodeAlreadyClaimed):
			losers++
		default:
			t.Fatalf("unexpected claim error: %v", err)
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)
}

func TestClaimIsSticky(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Claim(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	require.NoError(t, err)

	_, err = f.svc.Claim(context.Background(), staffActor("staff-2"), ticket.ChannelID)
	require.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyClaimed))
	assert.Contains(t, apperrors.ToDomainError(err).UserMessage(), "staff-1")
}

func TestCloseByOwner(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	result, err := f.svc.Close(context.Background(), Actor{UserID: "u1"}, ticket.ChannelID, "all sorted")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, result.Ticket.Status)
	assert.NotNil(t, result.Ticket.ClosedAt)
	assert.NotEmpty(t, result.TranscriptURL)
}

func TestCloseRejectsOutsiders(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Close(context.Background(), Actor{UserID: "u2"}, ticket.ChannelID, "")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestCloseIsTerminal(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Close(context.Background(), Actor{UserID: "u1"}, ticket.ChannelID, "done")
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), staffActor("staff-1"), ticket.ChannelID, "again")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Claim(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.ChangePriority(context.Background(), staffActor("staff-1"), ticket.ChannelID, domain.TicketPriorityHigh)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestEscalateGrantIsIdempotent(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	escalated, cfg, err := f.svc.Escalate(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, domain.TicketStatusEscalated, escalated.Status)
	assert.Equal(t, 1, f.platform.overwriteCount(ticket.ChannelID, testHighRole))

	_, _, err = f.svc.Escalate(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeAlreadyEscalated))
	assert.Equal(t, 1, f.platform.overwriteCount(ticket.ChannelID, testHighRole))
}

func TestEscalatedTicketStaysClaimable(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, _, err := f.svc.Escalate(context.Background(), staffActor("staff-1"), ticket.ChannelID)
	require.NoError(t, err)

	claimed, err := f.svc.Claim(context.Background(), staffActor("staff-2"), ticket.ChannelID)
	require.NoError(t, err)
	require.NotNil(t, claimed.ClaimedBy)
	assert.Equal(t, "staff-2", *claimed.ClaimedBy)
}

func TestChangePriority(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	updated, err := f.svc.ChangePriority(context.Background(), staffActor("staff-1"), ticket.ChannelID, domain.TicketPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
}

func TestNotesRoundTrip(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")
	actor := staffActor("staff-1")

	note, err := f.svc.AddNote(context.Background(), actor, ticket.ChannelID, "  checked billing  ")
	require.NoError(t, err)
	assert.Equal(t, "checked billing", note.Content)

	_, err = f.svc.AddNote(context.Background(), actor, ticket.ChannelID, "escalating soon")
	require.NoError(t, err)

	notes, err := f.svc.Notes(context.Background(), actor, ticket.ChannelID, 10)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, "escalating soon", notes[0].Content)
}

func TestNotesHiddenFromNonStaff(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	_, err := f.svc.Notes(context.Background(), Actor{UserID: "u1"}, ticket.ChannelID, 10)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))
}

func TestRenameChangesDisplayOnly(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")

	err := f.svc.Rename(context.Background(), staffActor("staff-1"), ticket.ChannelID, "Billing Issue!")
	require.NoError(t, err)

	ch, err := f.platform.Channel(context.Background(), ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, "billing-issue", ch.Name)

	// The record still resolves by the original channel id.
	resolved, err := f.svc.TicketByChannel(context.Background(), ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, resolved.ID)
}

func TestParticipantManagement(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")
	actor := staffActor("staff-1")
	ctx := context.Background()

	require.NoError(t, f.svc.AddParticipant(ctx, actor, ticket.ChannelID, "guest-1"))
	assert.Equal(t, 1, f.platform.overwriteCount(ticket.ChannelID, "guest-1"))

	removable, err := f.svc.RemovableParticipants(ctx, actor, ticket.ChannelID)
	require.NoError(t, err)
	assert.Equal(t, []string{"guest-1"}, removable)

	require.NoError(t, f.svc.RemoveParticipant(ctx, actor, ticket.ChannelID, "guest-1"))
	assert.Equal(t, 0, f.platform.overwriteCount(ticket.ChannelID, "guest-1"))
}

func TestRemoveParticipantProtectsPrincipals(t *testing.T) {
	f := newTicketFixture(t)
	ticket := f.openTicket(t, "u1")
	actor := staffActor("staff-1")
	ctx := context.Background()

	for _, protected := range []string{"u1", f.platform.BotUserID(), testGuild, testLowStaffRole} {
		err := f.svc.RemoveParticipant(ctx, actor, ticket.ChannelID, protected)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), "principal %s must not be removable", protected)
	}
}

func TestSetConfigFieldRequiresAdmin(t *testing.T) {
	f := newTicketFixture(t)
	ctx := context.Background()

	err := f.svc.SetConfigField(ctx, staffActor("staff-1"), testGuild, domain.ConfigFieldLogsChannel, "other-chan")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden))

	err = f.svc.SetConfigField(ctx, Actor{UserID: "admin-1", IsAdmin: true}, testGuild, domain.ConfigFieldLogsChannel, "other-chan")
	require.NoError(t, err)

	cfg, err := f.svc.GuildConfig(ctx, testGuild)
	require.NoError(t, err)
	require.NotNil(t, cfg.LogsChannelID)
	assert.Equal(t, "other-chan", *cfg.LogsChannelID)
}

func TestSanitizeChannelName(t *testing.T) {
	cases := map[string]string{
		"Alice Smith":   "alice-smith",
		"  WEIRD!!name": "weirdname",
		"💥💥":            "ticket",
		"ok_name-1":     "ok_name-1",
	}
	for input, want := range cases {
		assert.Equal(t, want, sanitizeChannelName(input), "input %q", input)
	}
}
