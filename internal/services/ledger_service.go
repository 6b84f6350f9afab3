package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"inari/internal/amqp"
	"inari/internal/codec"
	"inari/internal/core"
)

// Publisher announces local changes on the change feed.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// LedgerService saves entities locally and announces every applied change.
// A nil publisher keeps changes local.
type LedgerService struct {
	store     Store
	publisher Publisher
}

func NewLedgerService(store Store, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		publisher: publisher,
	}
}

func (s *LedgerService) SaveWallet(ctx context.Context, w core.Wallet) (bool, error) {
	return s.save(ctx, codec.TypeWallet, w.ID(), w.ModifiedAt(),
		func() (bool, error) { return s.store.SaveWallet(ctx, w) },
		func() ([]byte, error) { return codec.EncodeWallet(w) })
}

func (s *LedgerService) SaveCategory(ctx context.Context, c core.Category) (bool, error) {
	return s.save(ctx, codec.TypeCategory, c.ID(), c.ModifiedAt(),
		func() (bool, error) { return s.store.SaveCategory(ctx, c) },
		func() ([]byte, error) { return codec.EncodeCategory(c) })
}

func (s *LedgerService) SaveBudget(ctx context.Context, b core.Budget) (bool, error) {
	return s.save(ctx, codec.TypeBudget, b.ID(), b.ModifiedAt(),
		func() (bool, error) { return s.store.SaveBudget(ctx, b) },
		func() ([]byte, error) { return codec.EncodeBudget(b) })
}

func (s *LedgerService) SaveTransaction(ctx context.Context, t core.Transaction) (bool, error) {
	return s.save(ctx, codec.TypeTransaction, t.ID(), t.ModifiedAt(),
		func() (bool, error) { return s.store.SaveTransaction(ctx, t) },
		func() ([]byte, error) { return codec.EncodeTransaction(t) })
}

// DeleteTransaction removes a transaction locally and publishes the deletion.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	deleted, err := s.store.DeleteTransaction(ctx, id, at)
	if err != nil {
		return false, fmt.Errorf("delete transaction: %w", err)
	}
	if deleted {
		s.publish(ctx, amqp.NewDeleteMessage(codec.TypeTransaction, id.String(), at))
	}
	return deleted, nil
}

func (s *LedgerService) save(ctx context.Context, entity string, id uuid.UUID, modifiedAt time.Time,
	save func() (bool, error), encode func() ([]byte, error)) (bool, error) {
	// Encode first so a document the feed cannot carry is never stored.
	doc, err := encode()
	if err != nil {
		return false, err
	}

	applied, err := save()
	if err != nil {
		return false, fmt.Errorf("save %s: %w", entity, err)
	}
	if applied {
		s.publish(ctx, amqp.NewChangeMessage(entity, id.String(), modifiedAt, doc))
	}
	return applied, nil
}

// publish never fails the caller: the change is already stored locally.
func (s *LedgerService) publish(ctx context.Context, msg *amqp.ChangeMessage) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP client not available, skipping change message", "component", "ledger", "entity", msg.Entity)
		return
	}
	if err := s.publisher.PublishChange(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "Failed to publish change message",
			"component", "ledger",
			"entity", msg.Entity,
			"entity_id", msg.ID,
			"error", err)
	}
}
