package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
	"github.com/simonhalbmann-cpu/anora-sub000/internal/factid"
)

var ErrUnknownEntityRef = errors.New("decision record has no reference for entity")

// PlanExecutor applies a compiled write plan against the stores. Idempotency
// holds end to end: every write path is content-addressed or replace-by-key,
// so re-executing an unchanged plan reports Wrote=false and touches nothing.
type PlanExecutor struct {
	rawEvents domain.RawEventStore
	facts     domain.FactStore
	entities  domain.EntityResolver
	haltung   domain.HaltungStore
	logger    *zap.Logger
}

func NewPlanExecutor(
	rawEvents domain.RawEventStore,
	facts domain.FactStore,
	entities domain.EntityResolver,
	haltung domain.HaltungStore,
	logger *zap.Logger,
) *PlanExecutor {
	return &PlanExecutor{
		rawEvents: rawEvents,
		facts:     facts,
		entities:  entities,
		haltung:   haltung,
		logger:    logger,
	}
}

func (e *PlanExecutor) Execute(ctx context.Context, accountID uuid.UUID, plan domain.WritePlan, rec *domain.DecisionRecord) (*domain.ExecResult, error) {
	result := &domain.ExecResult{}

	if plan.RawEvent == domain.PlanAppend {
		written, err := e.rawEvents.Append(ctx, accountID, &rec.RawEvent)
		if err != nil {
			return nil, fmt.Errorf("append raw event: %w", err)
		}
		if written {
			result.RawEvents = 1
			result.Wrote = true
		}
	}

	if plan.Facts.Mode == domain.PlanUpsert {
		for _, c := range rec.Changes {
			if c.Status == domain.DiffIgnored {
				continue
			}
			changed, err := e.writeFact(ctx, accountID, rec, c.Fact)
			if err != nil {
				return nil, err
			}
			if changed {
				result.Facts++
				result.Wrote = true
			}
		}
	}

	if plan.Haltung.Mode == domain.PlanSetState {
		if err := e.haltung.Set(ctx, accountID, rec.RawEvent.UserID, rec.Stance); err != nil {
			return nil, fmt.Errorf("set haltung: %w", err)
		}
		result.HaltungKeys = len(plan.Haltung.Keys)
		result.Wrote = true
	}

	return result, nil
}

// writeFact materializes the entity row first, then upserts the fact. When
// an alias redirects the fingerprint onto an older entity, the fact is
// re-homed there and its content id recomputed before writing.
func (e *PlanExecutor) writeFact(ctx context.Context, accountID uuid.UUID, rec *domain.DecisionRecord, f domain.Fact) (bool, error) {
	ref, ok := rec.Entities[f.EntityID]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownEntityRef, f.EntityID)
	}

	entity, err := e.entities.Resolve(ctx, accountID, rec.RawEvent.UserID, ref)
	if err != nil {
		return false, fmt.Errorf("resolve entity %s: %w", f.EntityID, err)
	}
	if entity.ID != f.EntityID {
		e.logger.Debug("fact re-homed by entity alias",
			zap.String("from", f.EntityID),
			zap.String("to", entity.ID),
			zap.String("key", f.Key))
		f.EntityID = entity.ID
		f.ID = factid.BuildFactID(entity.ID, f.Key, f.Value, f.Meta.Latest, f.Validity)
	}

	changed, err := e.facts.Upsert(ctx, accountID, &f)
	if err != nil {
		return false, fmt.Errorf("upsert fact %s: %w", f.ID, err)
	}
	return changed, nil
}
