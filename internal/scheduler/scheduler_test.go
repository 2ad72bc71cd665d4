package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alien67x6/mt5-monitoring-API/internal/correlation"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
	"github.com/Alien67x6/mt5-monitoring-API/internal/notifier"
)

type fakeEngine struct {
	mu       sync.Mutex
	triggers []model.TriggerType
	alerts   []model.Alert
}

func (f *fakeEngine) EvaluateAll(_ context.Context, trigger model.TriggerType) []model.Alert {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.triggers = append(f.triggers, trigger)
	return f.alerts
}

func (f *fakeEngine) Sizes() []correlation.Size {
	return []correlation.Size{{Instrument: "EURUSD", Len: 3}}
}

func (f *fakeEngine) Capacity() int { return 10 }

func (f *fakeEngine) seen() []model.TriggerType {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TriggerType(nil), f.triggers...)
}

func TestRegisterRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(context.Background(), &fakeEngine{})
	assert.Error(t, s.Register("every minute please"))
	assert.NoError(t, s.Register("@every 60s"))
	assert.NoError(t, s.Register("*/30 * * * * *"))
}

func TestRunNowUsesStartupTrigger(t *testing.T) {
	eng := &fakeEngine{alerts: []model.Alert{{Instrument: "EURUSD"}}}
	s := NewScheduler(context.Background(), eng)

	alerts := s.RunNow()
	assert.Len(t, alerts, 1)
	assert.Equal(t, []model.TriggerType{model.TriggerStartup}, eng.seen())
	assert.Equal(t, int64(1), s.Cycles())
}

func TestPollJobRunsPeriodically(t *testing.T) {
	eng := &fakeEngine{}
	s := NewScheduler(context.Background(), eng)
	require.NoError(t, s.Register("@every 1s"))
	s.Start()

	require.Eventually(t, func() bool { return len(eng.seen()) >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
	assert.Equal(t, model.TriggerPeriodic, eng.seen()[0])
}

func TestHandleCommand(t *testing.T) {
	eng := &fakeEngine{}
	s := NewScheduler(context.Background(), eng)

	assert.Equal(t, notifier.NoCrossoversMessage, s.HandleCommand(context.Background(), "check"))
	assert.Equal(t, []model.TriggerType{model.TriggerCommand}, eng.seen())

	eng.alerts = []model.Alert{{Message: notifier.AlertMessage("EURUSD")}}
	assert.Contains(t, s.HandleCommand(context.Background(), "/check"), "ALERT on EURUSD")

	assert.Contains(t, s.HandleCommand(context.Background(), "status"), "EURUSD: 3/10")
	assert.Contains(t, s.HandleCommand(context.Background(), "help"), "/check")
}
