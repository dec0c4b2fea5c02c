// Package blueprint defines the curriculum document assembled by the authoring
// flow. The document is the only persisted artifact; the authoring position is
// always derived from which of its fields are populated.
package blueprint

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SchemaVersion identifies the current document shape.
const SchemaVersion = 1

// Document is the blueprint being authored.
type Document struct {
	ID            string        `json:"id" yaml:"id"`
	WizardContext WizardContext `json:"wizard_context" yaml:"wizard_context"`
	Ideation      Ideation      `json:"ideation" yaml:"ideation"`
	Journey       Journey       `json:"journey" yaml:"journey"`
	Deliverables  Deliverables  `json:"deliverables" yaml:"deliverables"`
	Timestamps    Timestamps    `json:"timestamps" yaml:"timestamps"`
	SchemaVersion int           `json:"schema_version" yaml:"schema_version"`
}

// WizardContext captures the framing answers collected before ideation.
type WizardContext struct {
	Vision   string `json:"vision" yaml:"vision"`
	Subject  string `json:"subject" yaml:"subject"`
	Audience string `json:"audience" yaml:"audience"`
	Scope    string `json:"scope" yaml:"scope"`
}

// IsEmpty reports whether no wizard answer has been captured yet.
func (w WizardContext) IsEmpty() bool {
	return strings.TrimSpace(w.Vision) == "" &&
		strings.TrimSpace(w.Subject) == "" &&
		strings.TrimSpace(w.Audience) == "" &&
		strings.TrimSpace(w.Scope) == ""
}

// Ideation holds the three framing statements of the project.
type Ideation struct {
	Concept         string `json:"concept" yaml:"concept"`
	DrivingQuestion string `json:"driving_question" yaml:"driving_question"`
	Challenge       string `json:"challenge" yaml:"challenge"`
}

// Journey is the learning sequence.
type Journey struct {
	Phases     []Phase  `json:"phases" yaml:"phases"`
	Activities []string `json:"activities" yaml:"activities"`
	Resources  []string `json:"resources" yaml:"resources"`
}

// Phase is one ordered segment of the journey.
type Phase struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Deliverables groups milestones, assessment and public impact.
type Deliverables struct {
	Milestones []Milestone `json:"milestones" yaml:"milestones"`
	Rubric     Rubric      `json:"rubric" yaml:"rubric"`
	Impact     Impact      `json:"impact" yaml:"impact"`
}

// Milestone is a checkpoint tagged to one of three phases (phase1..phase3).
type Milestone struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Phase       string `json:"phase" yaml:"phase"`
}

// Rubric is an ordered list of weighted criteria. Weights sum to 100.
type Rubric struct {
	Criteria []Criterion `json:"criteria" yaml:"criteria"`
}

// TotalWeight sums the criterion weights.
func (r Rubric) TotalWeight() int {
	total := 0
	for _, c := range r.Criteria {
		total += c.Weight
	}
	return total
}

// Criterion is a named, weighted assessment dimension.
type Criterion struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Weight      int    `json:"weight" yaml:"weight"`
}

// Impact describes who sees the final work and how it is shared.
type Impact struct {
	Audience string `json:"audience" yaml:"audience"`
	Method   string `json:"method" yaml:"method"`
	Venue    string `json:"venue,omitempty" yaml:"venue,omitempty"`
}

// Timestamps records document lifecycle times.
type Timestamps struct {
	Created time.Time `json:"created" yaml:"created"`
	Updated time.Time `json:"updated" yaml:"updated"`
}

// New returns an empty document. An empty id is replaced with a random one.
func New(id string, now time.Time) Document {
	id = strings.TrimSpace(id)
	if id == "" {
		id = NewID()
	}
	now = now.UTC()
	return Document{
		ID:            id,
		Timestamps:    Timestamps{Created: now, Updated: now},
		SchemaVersion: SchemaVersion,
	}
}

// NewID returns a fresh random identifier.
func NewID() string {
	return uuid.New().String()
}

// Touch refreshes the updated timestamp.
func (d *Document) Touch(now time.Time) {
	d.Timestamps.Updated = now.UTC()
	if d.Timestamps.Created.IsZero() {
		d.Timestamps.Created = d.Timestamps.Updated
	}
}

// Normalize fills zero values left behind by older or partial payloads.
func (d *Document) Normalize() {
	if d.SchemaVersion == 0 {
		d.SchemaVersion = SchemaVersion
	}
	if d.Timestamps.Updated.IsZero() {
		d.Timestamps.Updated = d.Timestamps.Created
	}
}

// Clone returns a deep copy that shares no slices with d.
func (d Document) Clone() Document {
	out := d
	out.Journey.Phases = clonePhases(d.Journey.Phases)
	out.Journey.Activities = cloneStrings(d.Journey.Activities)
	out.Journey.Resources = cloneStrings(d.Journey.Resources)
	out.Deliverables.Milestones = cloneMilestones(d.Deliverables.Milestones)
	out.Deliverables.Rubric.Criteria = cloneCriteria(d.Deliverables.Rubric.Criteria)
	return out
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

func clonePhases(values []Phase) []Phase {
	if values == nil {
		return nil
	}
	out := make([]Phase, len(values))
	copy(out, values)
	return out
}

func cloneMilestones(values []Milestone) []Milestone {
	if values == nil {
		return nil
	}
	out := make([]Milestone, len(values))
	copy(out, values)
	return out
}

func cloneCriteria(values []Criterion) []Criterion {
	if values == nil {
		return nil
	}
	out := make([]Criterion, len(values))
	copy(out, values)
	return out
}
