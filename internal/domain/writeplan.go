package domain

type PlanMode string

const (
	PlanNone     PlanMode = "none"
	PlanAppend   PlanMode = "append"
	PlanUpsert   PlanMode = "upsert"
	PlanSetState PlanMode = "set_state"
)

type FactsPlan struct {
	Mode  PlanMode `json:"mode"`
	Count int      `json:"count"`
}

type HaltungPlan struct {
	Mode PlanMode `json:"mode"`
	Keys []string `json:"keys,omitempty"`
}

// WritePlan declares what the executor would do without doing it. It is the
// load-bearing boundary between one pure computation and its side effects:
// callers can inspect every pending write before committing.
type WritePlan struct {
	RawEvent PlanMode    `json:"raw_event"`
	Facts    FactsPlan   `json:"facts"`
	Haltung  HaltungPlan `json:"haltung"`
}

// ExecResult reports what an executor actually wrote. Re-executing an
// unchanged plan must come back with Wrote=false.
type ExecResult struct {
	Wrote       bool `json:"wrote"`
	RawEvents   int  `json:"raw_events"`
	Facts       int  `json:"facts"`
	HaltungKeys int  `json:"haltung_keys"`
}

// DecisionRecord is the complete, immutable output of one core run.
// Entities maps each referenced entity id back to the raw reference it was
// derived from, so the persistence layer can materialize entity rows without
// re-parsing the input.
type DecisionRecord struct {
	RawEvent     RawEvent             `json:"raw_event"`
	ExtractorIDs []string             `json:"extractor_ids"`
	Warnings     []string             `json:"warnings,omitempty"`
	Entities     map[string]EntityRef `json:"entities,omitempty"`
	Resolutions  []ResolveResult      `json:"resolutions,omitempty"`
	Changes      []FactChange         `json:"changes,omitempty"`
	StancePatch  StancePatch          `json:"stance_patch,omitempty"`
	Stance       Stance               `json:"stance"`
	Intervention InterventionRecord   `json:"intervention"`
}
