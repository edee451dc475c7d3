package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
)

type leaderboardFixture struct {
	svc      *LeaderboardService
	regs     *fakeRegRepo
	tickets  *fakeTicketRepo
	platform *fakePlatform
}

func newLeaderboardFixture(t *testing.T) *leaderboardFixture {
	t.Helper()
	regs := &fakeRegRepo{}
	tickets := newFakeTicketRepo()
	plat := newFakePlatform()
	svc := NewLeaderboardService(LeaderboardDependencies{
		RegistrationRepo: regs,
		TicketRepo:       tickets,
		Platform:         plat,
		Logger:           zap.NewNop(),
		Interval:         time.Hour, // loops must not tick during tests
		TopN:             10,
	})
	t.Cleanup(svc.Close)
	return &leaderboardFixture{svc: svc, regs: regs, tickets: tickets, platform: plat}
}

func (f *leaderboardFixture) seedClaims(t *testing.T, claims map[string]int) {
	t.Helper()
	ctx := context.Background()
	n := 0
	for staffID, count := range claims {
		for i := 0; i < count; i++ {
			n++
			ticket, err := f.tickets.Create(ctx, string(rune('a'+n))+"-owner", "chan-seed-"+staffID+string(rune('0'+i)), testGuild)
			require.NoError(t, err)
			ok, err := f.tickets.Claim(ctx, ticket.ID, staffID)
			require.NoError(t, err)
			require.True(t, ok)
			ok, err = f.tickets.Close(ctx, ticket.ID)
			require.NoError(t, err)
			require.True(t, ok)
		}
	}
}

func TestPublishPostsAndRegisters(t *testing.T) {
	f := newLeaderboardFixture(t)
	f.seedClaims(t, map[string]int{"staff-a": 3, "staff-b": 1})
	f.platform.seedChannel("board-chan", "leaderboard")

	reg, err := f.svc.Publish(context.Background(), testGuild, "board-chan")
	require.NoError(t, err)
	assert.Equal(t, 1, f.regs.count())

	msg, err := f.platform.Message(context.Background(), "board-chan", reg.MessageID)
	require.NoError(t, err)
	require.Len(t, msg.Embeds, 1)
	assert.Contains(t, msg.Embeds[0].Description, "\U0001F947 <@staff-a>")
	assert.Contains(t, msg.Embeds[0].Description, "**3** tickets")
	assert.Contains(t, msg.Embeds[0].Description, "\U0001F948 <@staff-b>")
	assert.Contains(t, msg.Embeds[0].Description, "**1** ticket")
}

func TestReconcileEditsLiveSurface(t *testing.T) {
	f := newLeaderboardFixture(t)
	f.platform.seedChannel("board-chan", "leaderboard")
	f.platform.seedMessage("board-chan", "board-msg")

	alive := f.svc.reconcile(context.Background(), domain.LeaderboardRegistration{
		GuildID:   testGuild,
		ChannelID: "board-chan",
		MessageID: "board-msg",
	})
	assert.True(t, alive)
	assert.Equal(t, 1, f.platform.editCount())

	msg, err := f.platform.Message(context.Background(), "board-chan", "board-msg")
	require.NoError(t, err)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "No tickets have been claimed yet.", msg.Embeds[0].Description)
}

func TestReconcileDeregistersLostMessage(t *testing.T) {
	f := newLeaderboardFixture(t)
	f.platform.seedChannel("board-chan", "leaderboard")
	reg := &domain.LeaderboardRegistration{GuildID: testGuild, ChannelID: "board-chan", MessageID: "gone-msg"}
	require.NoError(t, f.regs.Create(context.Background(), reg))
	f.platform.markLost("gone-msg")

	alive := f.svc.reconcile(context.Background(), *reg)
	assert.False(t, alive)
	assert.Equal(t, 0, f.regs.count())
}

func TestReconcileDeregistersLostChannel(t *testing.T) {
	f := newLeaderboardFixture(t)
	reg := &domain.LeaderboardRegistration{GuildID: testGuild, ChannelID: "deleted-chan", MessageID: "msg-1"}
	require.NoError(t, f.regs.Create(context.Background(), reg))
	f.platform.markLost("deleted-chan")

	alive := f.svc.reconcile(context.Background(), *reg)
	assert.False(t, alive)
	assert.Equal(t, 0, f.regs.count())
}

func TestRestorePrunesDeadRegistrations(t *testing.T) {
	f := newLeaderboardFixture(t)
	ctx := context.Background()

	f.platform.seedChannel("live-chan", "leaderboard")
	f.platform.seedMessage("live-chan", "live-msg")
	require.NoError(t, f.regs.Create(ctx, &domain.LeaderboardRegistration{
		GuildID: testGuild, ChannelID: "live-chan", MessageID: "live-msg",
	}))
	require.NoError(t, f.regs.Create(ctx, &domain.LeaderboardRegistration{
		GuildID: testGuild, ChannelID: "dead-chan", MessageID: "dead-msg",
	}))
	f.platform.markLost("dead-chan")

	require.NoError(t, f.svc.Restore(ctx))

	regs, err := f.regs.List(ctx)
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "live-msg", regs[0].MessageID)
	// The surviving surface was refreshed during restore.
	assert.Equal(t, 1, f.platform.editCount())
}
