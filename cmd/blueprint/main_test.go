package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/config"
	"github.com/kingrea/blueprint/internal/logbook"
	"github.com/kingrea/blueprint/internal/store"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seedDocument(t *testing.T, dir string) blueprint.Document {
	t.Helper()
	fs, err := store.NewFileStore(filepath.Join(dir, config.BlueprintDir, "documents"))
	if err != nil {
		t.Fatalf("file store: %v", err)
	}
	doc := blueprint.New("garden", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	doc.WizardContext = blueprint.WizardContext{Vision: "Grow food", Subject: "Biology", Audience: "Grade 6", Scope: "4 weeks"}
	doc.Ideation.Concept = "Living systems"
	if err := fs.Save(context.Background(), doc.ID, doc); err != nil {
		t.Fatalf("save: %v", err)
	}
	return doc
}

func TestExtractMilestonesFromStdin(t *testing.T) {
	out, err := execute(t, "1. Research plan\n2. Prototype build\n3. Final pitch\n", "extract", "milestones")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var got struct {
		Kind     string                `json:"kind"`
		Strategy string                `json:"strategy"`
		Result   []blueprint.Milestone `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Kind != "milestones" || len(got.Result) != 3 {
		t.Fatalf("unexpected output %+v", got)
	}
	if got.Result[0].Title != "Research plan" || got.Result[2].Phase != "phase3" {
		t.Fatalf("unexpected milestones %+v", got.Result)
	}
}

func TestExtractRubricFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rubric.txt")
	if err := os.WriteFile(path, []byte("- Research: uses sources\n- Design: iterates on feedback\n- Pitch: speaks clearly\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "", "extract", "rubric", path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	var got struct {
		Result []blueprint.Criterion `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	total := 0
	for _, c := range got.Result {
		total += c.Weight
	}
	if len(got.Result) != 3 || total != 100 {
		t.Fatalf("expected three criteria summing to 100, got %+v", got.Result)
	}
}

func TestExtractRejectsUnknownKind(t *testing.T) {
	if _, err := execute(t, "text", "extract", "essays"); err == nil {
		t.Fatalf("expected unknown extractor error")
	}
}

func TestJourneyJSON(t *testing.T) {
	out, err := execute(t, "", "journey", "--subject", "Ecology", "--scope", "6 weeks", "--challenge", "Pitch a plan to the council", "--json")
	if err != nil {
		t.Fatalf("journey: %v", err)
	}
	var got struct {
		DurationWeeks int `json:"duration_weeks"`
		Phases        []struct {
			Name string `json:"name"`
		} `json:"phases"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DurationWeeks != 6 || len(got.Phases) != 4 {
		t.Fatalf("expected 4 phases over 6 weeks, got %+v", got)
	}
}

func TestJourneyText(t *testing.T) {
	out, err := execute(t, "", "journey", "--subject", "History", "--scope", "3 weeks")
	if err != nil {
		t.Fatalf("journey: %v", err)
	}
	if !strings.Contains(out, "3-week journey") || !strings.Contains(out, "1. ") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestStatusListsAndShowsDocuments(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "status", "--dir", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "No blueprints yet") {
		t.Fatalf("expected empty listing, got:\n%s", out)
	}

	seedDocument(t, dir)
	out, err = execute(t, "", "status", "--dir", dir)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "garden") || !strings.Contains(out, "Biology") {
		t.Fatalf("listing missing document:\n%s", out)
	}

	out, err = execute(t, "", "status", "--dir", dir, "--id", "garden")
	if err != nil {
		t.Fatalf("status --id: %v", err)
	}
	if !strings.Contains(out, "Stage:    Ideation") || !strings.Contains(out, "Essential question") {
		t.Fatalf("unexpected status:\n%s", out)
	}

	if _, err := execute(t, "", "status", "--dir", dir, "--id", "missing"); err == nil || !strings.Contains(err.Error(), "no blueprint saved") {
		t.Fatalf("expected missing document error, got %v", err)
	}
}

func TestStatusPrintsRecentJournal(t *testing.T) {
	dir := t.TempDir()
	out, err := execute(t, "", "status", "--dir", dir, "--recent", "2")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Journal is empty") {
		t.Fatalf("expected empty journal, got:\n%s", out)
	}

	journal, err := logbook.New(filepath.Join(dir, config.BlueprintDir, "logs", logbook.FileName))
	if err != nil {
		t.Fatalf("logbook: %v", err)
	}
	journal.Info("first entry")
	journal.Warn("second entry")
	journal.Info("third entry")

	out, err = execute(t, "", "status", "--dir", dir, "--recent", "2")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(out, "Recent activity (2 of 3)") || !strings.Contains(out, "third entry") {
		t.Fatalf("unexpected journal output:\n%s", out)
	}
	if strings.Contains(out, "first entry") {
		t.Fatalf("only the newest entries should print:\n%s", out)
	}
}

func TestExportWritesJSON(t *testing.T) {
	dir := t.TempDir()
	doc := seedDocument(t, dir)
	out, err := execute(t, "", "export", "--dir", dir, "--id", doc.ID, "--format", "json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	path := filepath.Join(dir, config.BlueprintDir, "exports", doc.ID+".json")
	if !strings.Contains(out, path) {
		t.Fatalf("expected path in output, got:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var decoded blueprint.Document
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if decoded.Ideation.Concept != "Living systems" {
		t.Fatalf("unexpected export %+v", decoded.Ideation)
	}
}

func TestExportRequiresID(t *testing.T) {
	if _, err := execute(t, "", "export", "--dir", t.TempDir()); err == nil {
		t.Fatalf("expected --id to be required")
	}
}
