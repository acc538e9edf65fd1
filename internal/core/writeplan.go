package core

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/simonhalbmann-cpu/anora-sub000/internal/domain"
)

// CompilePlan derives the write plan from one decision record. The plan is
// conservative: facts are planned only when extractors ran this turn and the
// diff found something to write, stance only when a patch exists. Replaying
// an unchanged turn therefore compiles to a no-op fact plan.
func CompilePlan(rec *domain.DecisionRecord) domain.WritePlan {
	plan := domain.WritePlan{
		RawEvent: domain.PlanAppend,
		Facts:    domain.FactsPlan{Mode: domain.PlanNone},
		Haltung:  domain.HaltungPlan{Mode: domain.PlanNone},
	}

	if len(rec.ExtractorIDs) > 0 {
		count := 0
		for _, c := range rec.Changes {
			if c.Status == domain.DiffNew || c.Status == domain.DiffUpdated {
				count++
			}
		}
		if count > 0 {
			plan.Facts = domain.FactsPlan{Mode: domain.PlanUpsert, Count: count}
		}
	}

	if len(rec.StancePatch) > 0 {
		keys := make([]string, 0, len(rec.StancePatch))
		for dim := range rec.StancePatch {
			keys = append(keys, string(dim))
		}
		sort.Strings(keys)
		plan.Haltung = domain.HaltungPlan{Mode: domain.PlanSetState, Keys: keys}
	}

	return plan
}

// RunResult pairs one run's record with its compiled plan and, when the plan
// was executed, what the executor actually wrote.
type RunResult struct {
	Record *domain.DecisionRecord `json:"record"`
	Plan   domain.WritePlan       `json:"plan"`
	Exec   *domain.ExecResult     `json:"exec,omitempty"`
	DryRun bool                   `json:"dry_run"`
}

// RunWithPersistence computes a turn, compiles its plan, and hands the plan
// to the executor. In dry-run mode the executor is never invoked; the caller
// gets the full plan to inspect and nothing else happens.
func (e *Engine) RunWithPersistence(ctx context.Context, accountID uuid.UUID, exec domain.Executor, in Input, dryRun bool) (*RunResult, error) {
	rec, err := e.RunOnce(in)
	if err != nil {
		return nil, err
	}

	plan := CompilePlan(rec)
	result := &RunResult{Record: rec, Plan: plan, DryRun: dryRun}
	if dryRun {
		return result, nil
	}

	written, err := exec.Execute(ctx, accountID, plan, rec)
	if err != nil {
		return nil, err
	}
	result.Exec = written
	return result, nil
}
