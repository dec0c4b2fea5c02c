package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/events"
)

type recordingGateway struct {
	mu    sync.Mutex
	saves []blueprint.Document
	fail  error
}

func (g *recordingGateway) Save(_ context.Context, _ string, doc blueprint.Document) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return g.fail
	}
	g.saves = append(g.saves, doc)
	return nil
}

func (g *recordingGateway) Load(context.Context, string) (blueprint.Document, error) {
	return blueprint.Document{}, ErrNotFound
}

func (g *recordingGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.saves)
}

func (g *recordingGateway) last() blueprint.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves[len(g.saves)-1]
}

func (g *recordingGateway) setFail(err error) {
	g.mu.Lock()
	g.fail = err
	g.mu.Unlock()
}

func TestAutosaverDebouncesToLatestSnapshot(t *testing.T) {
	defer goleak.VerifyNone(t)
	gw := &recordingGateway{}
	a := NewAutosaver(gw, WithDebounce(20*time.Millisecond))
	doc := blueprint.New("doc", time.Now())
	for _, vision := range []string{"one", "two", "three"} {
		doc.WizardContext.Vision = vision
		a.Schedule(doc)
	}
	require.Eventually(t, func() bool { return gw.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "three", gw.last().WizardContext.Vision)
	assert.False(t, a.hasPending())
	require.NoError(t, a.Close(context.Background()))
}

func TestAutosaverFlushWritesImmediately(t *testing.T) {
	defer goleak.VerifyNone(t)
	gw := &recordingGateway{}
	a := NewAutosaver(gw, WithDebounce(time.Hour))
	doc := blueprint.New("doc", time.Now())
	doc.Journey.Activities = []string{"Gallery walk"}
	a.Schedule(doc)
	doc.Journey.Activities[0] = "mutated after schedule"
	require.True(t, a.hasPending())
	require.NoError(t, a.Flush(context.Background()))
	require.Equal(t, 1, gw.count())
	assert.Equal(t, "Gallery walk", gw.last().Journey.Activities[0], "snapshot must be cloned at schedule time")
	require.NoError(t, a.Flush(context.Background()))
	assert.Equal(t, 1, gw.count(), "nothing pending means no write")
	require.NoError(t, a.Close(context.Background()))
}

func TestAutosaverFailureIsReportedAndRetained(t *testing.T) {
	defer goleak.VerifyNone(t)
	gw := &recordingGateway{fail: errors.New("disk full")}
	router := events.NewRouter()
	defer router.Close()
	sub := router.Subscribe("doc")
	defer sub.Close()
	a := NewAutosaver(gw, WithDebounce(time.Hour), WithPublisher(router))

	a.Schedule(blueprint.New("doc", time.Now()))
	err := a.Flush(context.Background())
	require.Error(t, err)
	assert.True(t, a.hasPending(), "failed snapshot stays queued")
	event := <-sub.Events
	assert.Equal(t, events.PersistenceFailed, event.Type)
	assert.Contains(t, event.Message, "disk full")

	gw.setFail(nil)
	require.NoError(t, a.Close(context.Background()))
	assert.Equal(t, 1, gw.count())
	a.Schedule(blueprint.New("doc", time.Now()))
	assert.False(t, a.hasPending(), "closed autosaver ignores new snapshots")
}

func TestAutosaverZeroDebounceSavesSynchronously(t *testing.T) {
	gw := &recordingGateway{}
	a := NewAutosaver(gw, WithDebounce(0))
	a.Schedule(blueprint.New("doc", time.Now()))
	assert.Equal(t, 1, gw.count())
}
