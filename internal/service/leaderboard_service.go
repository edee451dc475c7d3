package service

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/platform"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/render"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/repository"
	apperrors "github.com/ddex3/Shaked-Discord-Ticket-System/pkg/util"
)

// LeaderboardService keeps every registered leaderboard message showing the
// current top claimants. Each registration runs its own timer loop; a
// registration whose channel or message stops resolving is deleted and its
// loop stopped, never retried. Restore re-validates persisted registrations
// the same way, which makes the mechanism self-healing across restarts.
type LeaderboardService struct {
	regs     repository.LeaderboardRepository
	tickets  repository.TicketRepository
	platform platform.Client
	logger   *zap.Logger
	interval time.Duration
	topN     int

	mu    sync.Mutex
	loops map[string]*loopHandle
	wg    sync.WaitGroup
	root  context.Context
	stop  context.CancelFunc
}

type loopHandle struct {
	cancel context.CancelFunc
}

// LeaderboardDependencies bundles collaborators for the reconciler.
type LeaderboardDependencies struct {
	RegistrationRepo repository.LeaderboardRepository
	TicketRepo       repository.TicketRepository
	Platform         platform.Client
	Logger           *zap.Logger
	Interval         time.Duration
	TopN             int
}

// NewLeaderboardService constructs the service.
func NewLeaderboardService(deps LeaderboardDependencies) *LeaderboardService {
	interval := deps.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	topN := deps.TopN
	if topN <= 0 {
		topN = 10
	}
	root, stop := context.WithCancel(context.Background())
	return &LeaderboardService{
		regs:     deps.RegistrationRepo,
		tickets:  deps.TicketRepo,
		platform: deps.Platform,
		logger:   deps.Logger,
		interval: interval,
		topN:     topN,
		loops:    make(map[string]*loopHandle),
		root:     root,
		stop:     stop,
	}
}

// Publish posts a fresh leaderboard into the channel, registers it, and
// starts its reconciliation loop.
func (s *LeaderboardService) Publish(ctx context.Context, guildID, channelID string) (*domain.LeaderboardRegistration, error) {
	embed, err := s.renderBoard(ctx, guildID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	msg, err := s.platform.SendMessage(ctx, channelID, platform.Message{Embed: embed})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	reg := &domain.LeaderboardRegistration{
		GuildID:   guildID,
		ChannelID: channelID,
		MessageID: msg.ID,
	}
	if err := s.regs.Create(ctx, reg); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.startLoop(*reg)
	return reg, nil
}

// Restore reloads persisted registrations, re-validates each with the
// normal resolve-or-deregister step, and restarts loops for survivors.
func (s *LeaderboardService) Restore(ctx context.Context) error {
	regs, err := s.regs.List(ctx)
	if err != nil {
		return err
	}
	for _, reg := range regs {
		if s.reconcile(ctx, reg) {
			s.startLoop(reg)
		}
	}
	return nil
}

// Close stops every loop and waits for them to drain.
func (s *LeaderboardService) Close() {
	s.stop()
	s.wg.Wait()
}

// startLoop begins the recurring task for one registration. Re-registering
// the same message replaces the previous loop.
func (s *LeaderboardService) startLoop(reg domain.LeaderboardRegistration) {
	s.mu.Lock()
	if prev, ok := s.loops[reg.MessageID]; ok {
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(s.root)
	handle := &loopHandle{cancel: cancel}
	s.loops[reg.MessageID] = handle
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.removeLoop(reg.MessageID, handle)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.reconcile(ctx, reg) {
					return
				}
			}
		}
	}()
}

// removeLoop drops the map entry only when it still belongs to this loop,
// so a replaced loop never deletes its successor on the way out.
func (s *LeaderboardService) removeLoop(messageID string, handle *loopHandle) {
	handle.cancel()
	s.mu.Lock()
	if current, ok := s.loops[messageID]; ok && current == handle {
		delete(s.loops, messageID)
	}
	s.mu.Unlock()
}

// reconcile re-renders one surface. Returns false when the registration was
// dropped because its channel or message no longer resolves.
func (s *LeaderboardService) reconcile(ctx context.Context, reg domain.LeaderboardRegistration) bool {
	if _, err := s.platform.Channel(ctx, reg.ChannelID); err != nil {
		return s.handleResolveFailure(ctx, reg, err)
	}
	if _, err := s.platform.Message(ctx, reg.ChannelID, reg.MessageID); err != nil {
		return s.handleResolveFailure(ctx, reg, err)
	}

	embed, err := s.renderBoard(ctx, reg.GuildID)
	if err != nil {
		s.logger.Warn("leaderboard render failed",
			zap.String("guild_id", reg.GuildID), zap.Error(err))
		return true
	}

	if err := s.platform.EditMessage(ctx, reg.ChannelID, reg.MessageID, platform.Message{Embed: embed}); err != nil {
		return s.handleResolveFailure(ctx, reg, err)
	}
	return true
}

func (s *LeaderboardService) handleResolveFailure(ctx context.Context, reg domain.LeaderboardRegistration, cause error) bool {
	if !platform.IsReferenceLost(cause) {
		// Transient outbound failure: skip this cycle, keep the loop.
		s.logger.Warn("leaderboard update failed",
			zap.String("message_id", reg.MessageID), zap.Error(cause))
		return true
	}
	s.logger.Info("leaderboard surface gone, deregistering",
		zap.String("message_id", reg.MessageID))
	if err := s.regs.DeleteByMessage(ctx, reg.MessageID); err != nil {
		s.logger.Warn("leaderboard deregistration failed",
			zap.String("message_id", reg.MessageID), zap.Error(err))
	}
	return false
}

func (s *LeaderboardService) renderBoard(ctx context.Context, guildID string) (*discordgo.MessageEmbed, error) {
	entries, err := s.tickets.TopClaimers(ctx, guildID, s.topN)
	if err != nil {
		return nil, err
	}
	return render.LeaderboardEmbed(entries, s.interval), nil
}
