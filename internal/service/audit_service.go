package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/domain"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/events"
	"github.com/ddex3/Shaked-Discord-Ticket-System/internal/repository"
)

// AuditService persists an audit row for every lifecycle event. It runs as
// an event subscriber so the mutation path never blocks on audit writes.
type AuditService struct {
	logs   repository.TicketLogRepository
	logger *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(logs repository.TicketLogRepository, logger *zap.Logger) *AuditService {
	return &AuditService{logs: logs, logger: logger}
}

var auditedEvents = []events.EventType{
	events.EventTicketCreated,
	events.EventTicketClaimed,
	events.EventPriorityChanged,
	events.EventTicketEscalated,
	events.EventTicketClosed,
	events.EventNoteAdded,
	events.EventTicketRenamed,
	events.EventParticipantAdded,
	events.EventParticipantRemoved,
}

// Register subscribes the service to every audited event type.
func (s *AuditService) Register(dispatcher events.Dispatcher) {
	for _, eventType := range auditedEvents {
		dispatcher.Subscribe(eventType, s.record)
	}
}

func (s *AuditService) record(ctx context.Context, event events.Event) error {
	action, ok := events.ActionForEvent(event.Type)
	if !ok {
		return nil
	}

	entry := &domain.TicketLogEntry{
		TicketID:    event.TicketID,
		Action:      action,
		PerformedBy: event.ActorID,
	}
	if event.Detail != "" {
		detail := event.Detail
		entry.Details = &detail
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		s.logger.Error("audit write failed",
			zap.Int64("ticket_id", event.TicketID),
			zap.String("action", string(action)),
			zap.Error(err))
		return err
	}

	s.logger.Debug("audit entry recorded",
		zap.Int64("ticket_id", event.TicketID),
		zap.String("action", string(action)),
		zap.String("event_id", event.ID))
	return nil
}

// History returns the audit trail for one ticket, newest first.
func (s *AuditService) History(ctx context.Context, ticketID int64) ([]domain.TicketLogEntry, error) {
	return s.logs.ListByTicket(ctx, ticketID)
}
