package blueprint

import (
	"testing"
	"time"
)

func TestNewAssignsIDAndTimestamps(t *testing.T) {
	now := time.Date(2024, 5, 2, 10, 0, 0, 0, time.FixedZone("EST", -5*3600))
	doc := New("  ", now)
	if doc.ID == "" {
		t.Fatalf("expected generated id")
	}
	if doc.SchemaVersion != SchemaVersion {
		t.Fatalf("schema version = %d", doc.SchemaVersion)
	}
	if !doc.Timestamps.Created.Equal(now) || doc.Timestamps.Created.Location() != time.UTC {
		t.Fatalf("created = %v", doc.Timestamps.Created)
	}
	if !doc.WizardContext.IsEmpty() {
		t.Fatalf("new document should have empty wizard context")
	}
	if New("fixed", now).ID != "fixed" {
		t.Fatalf("explicit id not kept")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc := New("doc", time.Now())
	doc.Journey.Phases = []Phase{{ID: "phase-1", Title: "Launch"}}
	doc.Journey.Activities = []string{"Entry event"}
	doc.Deliverables.Milestones = []Milestone{{ID: "milestone-1", Title: "Plan"}}
	doc.Deliverables.Rubric.Criteria = []Criterion{{ID: "criterion-1", Name: "Inquiry", Weight: 100}}

	clone := doc.Clone()
	clone.Journey.Phases[0].Title = "Changed"
	clone.Journey.Activities[0] = "Changed"
	clone.Deliverables.Milestones[0].Title = "Changed"
	clone.Deliverables.Rubric.Criteria[0].Weight = 1

	if doc.Journey.Phases[0].Title != "Launch" || doc.Journey.Activities[0] != "Entry event" {
		t.Fatalf("journey shared with clone")
	}
	if doc.Deliverables.Milestones[0].Title != "Plan" || doc.Deliverables.Rubric.TotalWeight() != 100 {
		t.Fatalf("deliverables shared with clone")
	}
}

func TestTouchAndNormalize(t *testing.T) {
	var doc Document
	doc.Normalize()
	if doc.SchemaVersion != SchemaVersion {
		t.Fatalf("normalize did not set schema version")
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	doc.Touch(now)
	if !doc.Timestamps.Created.Equal(now) || !doc.Timestamps.Updated.Equal(now) {
		t.Fatalf("touch = %+v", doc.Timestamps)
	}
}
