package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inari/internal/amqp"
	"inari/internal/codec"
	"inari/internal/core"
	"inari/internal/log"
	"inari/internal/storage"
)

// Store is the persistence the sync processor writes to. Saves report whether
// the change was newer than the stored copy.
type Store interface {
	SaveWallet(ctx context.Context, w core.Wallet) (bool, error)
	SaveCategory(ctx context.Context, c core.Category) (bool, error)
	SaveBudget(ctx context.Context, b core.Budget) (bool, error)
	SaveTransaction(ctx context.Context, t core.Transaction) (bool, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID, modifiedAt time.Time) (bool, error)
}

// SyncProcessor applies change messages from the feed to the local store.
type SyncProcessor struct {
	store  Store
	logger *log.StructuredLogger
}

func NewSyncProcessor(store Store, logger *log.Logger) *SyncProcessor {
	return &SyncProcessor{
		store:  store,
		logger: log.NewStructuredLogger(logger.WithComponent(log.ComponentSync)),
	}
}

// Apply decodes the message document and saves it. Errors that a redelivery
// cannot fix wrap amqp.ErrRejected.
func (p *SyncProcessor) Apply(ctx context.Context, msg *amqp.ChangeMessage) error {
	start := time.Now()

	applied, err := p.apply(ctx, msg)
	if err != nil {
		errType := log.ErrorTypeDatabase
		if errors.Is(err, amqp.ErrRejected) {
			errType = log.ErrorTypeDecode
		}
		p.logger.LogError(ctx, "Failed to apply change", err, log.ComponentSync, log.OpSync,
			log.NewFields().WithEntity(msg.Entity, msg.ID, msg.ModifiedAt).WithErrorType(errType))
		return err
	}

	p.logger.LogChange(ctx, msg.Entity, msg.ID, msg.ModifiedAt, applied, time.Since(start))
	return nil
}

func (p *SyncProcessor) apply(ctx context.Context, msg *amqp.ChangeMessage) (bool, error) {
	if err := msg.Validate(); err != nil {
		return false, reject(err)
	}
	if msg.Deleted {
		return p.delete(ctx, msg)
	}

	doc := []byte(msg.Document)
	switch msg.Entity {
	case codec.TypeWallet:
		w, err := codec.DecodeWallet(doc)
		if err != nil {
			return false, reject(err)
		}
		if err := sameID(msg, w.ID()); err != nil {
			return false, err
		}
		return p.store.SaveWallet(ctx, w)

	case codec.TypeCategory:
		c, err := codec.DecodeCategory(doc)
		if err != nil {
			return false, reject(err)
		}
		if err := sameID(msg, c.ID()); err != nil {
			return false, err
		}
		return p.store.SaveCategory(ctx, c)

	case codec.TypeBudget:
		b, err := codec.DecodeBudget(doc)
		if err != nil {
			return false, reject(err)
		}
		if err := sameID(msg, b.ID()); err != nil {
			return false, err
		}
		applied, err := p.store.SaveBudget(ctx, b)
		if errors.Is(err, storage.ErrDuplicateBudget) {
			return false, reject(err)
		}
		return applied, err

	case codec.TypeTransaction:
		t, err := codec.DecodeTransaction(doc)
		if err != nil {
			return false, reject(err)
		}
		if err := sameID(msg, t.ID()); err != nil {
			return false, err
		}
		return p.store.SaveTransaction(ctx, t)
	}

	return false, reject(fmt.Errorf("unknown entity %q", msg.Entity))
}

func (p *SyncProcessor) delete(ctx context.Context, msg *amqp.ChangeMessage) (bool, error) {
	if msg.Entity != codec.TypeTransaction {
		return false, reject(fmt.Errorf("%s cannot be deleted", msg.Entity))
	}
	id, err := uuid.Parse(msg.ID)
	if err != nil {
		return false, reject(fmt.Errorf("transaction id %q: %w", msg.ID, err))
	}
	return p.store.DeleteTransaction(ctx, id, msg.ModifiedAt)
}

func sameID(msg *amqp.ChangeMessage, id uuid.UUID) error {
	msgID, err := uuid.Parse(msg.ID)
	if err != nil {
		return reject(fmt.Errorf("message id %q: %w", msg.ID, err))
	}
	if msgID != id {
		return reject(fmt.Errorf("message id %s does not match document id %s", msg.ID, id))
	}
	return nil
}

func reject(err error) error {
	return fmt.Errorf("%w: %w", amqp.ErrRejected, err)
}
