package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/Dan9191/finplan-service/internal/config"
	"github.com/Dan9191/finplan-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJobs struct {
	refreshErr error
	refreshes  int
	sweeps     int
}

func (f *fakeJobs) RefreshReferenceRate(context.Context) (models.ReferenceRate, error) {
	f.refreshes++
	return models.ReferenceRate{}, f.refreshErr
}

func (f *fakeJobs) SweepSessions() int {
	f.sweeps++
	return 0
}

func TestNew_RegistersJobs(t *testing.T) {
	log, _ := test.NewNullLogger()
	cfg := &config.Config{RateRefreshSpec: "@every 1h", SessionSweepSpec: "*/10 * * * *"}

	s, err := New(cfg, &fakeJobs{}, log)
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 2)
}

func TestNew_InvalidSpec(t *testing.T) {
	log, _ := test.NewNullLogger()

	_, err := New(&config.Config{RateRefreshSpec: "whenever", SessionSweepSpec: "@every 1m"}, &fakeJobs{}, log)
	assert.Error(t, err)

	_, err = New(&config.Config{RateRefreshSpec: "@hourly", SessionSweepSpec: "61 * * * *"}, &fakeJobs{}, log)
	assert.Error(t, err)
}

func TestJobs(t *testing.T) {
	log, hook := test.NewNullLogger()
	jobs := &fakeJobs{refreshErr: errors.New("feed offline")}
	s, err := New(&config.Config{RateRefreshSpec: "@hourly", SessionSweepSpec: "@every 5m"}, jobs, log)
	require.NoError(t, err)

	s.refreshRate()
	s.sweepSessions()

	assert.Equal(t, 1, jobs.refreshes)
	assert.Equal(t, 1, jobs.sweeps)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
