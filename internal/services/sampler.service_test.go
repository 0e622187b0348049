package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource is a controllable ResourceSource for tests
type stubSource struct {
	mu     sync.Mutex
	values map[models.Metric]float64
	errs   map[models.Metric]error
	memory models.MemoryDetails
	disk   models.DiskDetails
}

func newStubSource() *stubSource {
	return &stubSource{
		values: make(map[models.Metric]float64),
		errs:   make(map[models.Metric]error),
	}
}

func (s *stubSource) set(metric models.Metric, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[metric] = value
}

func (s *stubSource) fail(metric models.Metric, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[metric] = err
}

func (s *stubSource) GetResourceValue(metric models.Metric) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.errs[metric]; err != nil {
		return 0, err
	}
	return s.values[metric], nil
}

func (s *stubSource) GetMemoryDetails() (models.MemoryDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory, nil
}

func (s *stubSource) GetDiskDetails() (models.DiskDetails, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disk, nil
}

func (s *stubSource) GetCPUTemperature() (float64, error) {
	return 0, errors.New("no sensor")
}

func (s *stubSource) GetUptime() (string, error) {
	return "1d 2h 3m", nil
}

type recordingObserver struct {
	mu    sync.Mutex
	calls int
}

func (o *recordingObserver) MetricsUpdated() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
}

func (o *recordingObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

type panickingObserver struct{}

func (*panickingObserver) MetricsUpdated() {
	panic("observer failure")
}

func newTestSampler(t *testing.T, source ResourceSource, overrides map[string]interface{}) *Sampler {
	t.Helper()
	cfg := config.New()
	for key, value := range overrides {
		require.NoError(t, cfg.Set(key, value))
	}
	return NewSampler(cfg, source)
}

func TestHistoryBoundedFIFO(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, map[string]interface{}{"app.history_size": 5})

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := base
	sampler.now = func() time.Time { return clock }

	for i := 0; i < 8; i++ {
		source.set(models.MetricCPU, float64(10+i))
		sampler.Update()
		clock = clock.Add(time.Second)
	}

	history := sampler.History(models.MetricCPU)
	require.Len(t, history, 5)

	// exactly the most recent five, in chronological order
	for i, sample := range history {
		assert.Equal(t, float64(13+i), sample.Value)
		assert.Equal(t, base.Add(time.Duration(3+i)*time.Second), sample.Timestamp)
	}
}

func TestUpdateIsolatesFailingMetric(t *testing.T) {
	source := newStubSource()
	source.set(models.MetricMemory, 42)
	source.fail(models.MetricCPU, errors.New("probe down"))
	sampler := newTestSampler(t, source, nil)

	sampler.Update()

	assert.Empty(t, sampler.History(models.MetricCPU))
	require.Len(t, sampler.History(models.MetricMemory), 1)
	assert.Equal(t, 42.0, sampler.History(models.MetricMemory)[0].Value)
}

func TestDisabledAndUnknownMetricsHaveEmptyHistory(t *testing.T) {
	source := newStubSource()
	source.set(models.MetricNetwork, 30)
	sampler := newTestSampler(t, source, nil)

	sampler.Update()

	// network is disabled by default; bogus metrics are simply unknown
	assert.Empty(t, sampler.History(models.MetricNetwork))
	assert.Empty(t, sampler.History(models.Metric("bogus")))
}

func TestHistoryReturnsCopy(t *testing.T) {
	source := newStubSource()
	source.set(models.MetricCPU, 10)
	sampler := newTestSampler(t, source, nil)
	sampler.Update()

	history := sampler.History(models.MetricCPU)
	history[0].Value = 999

	assert.Equal(t, 10.0, sampler.History(models.MetricCPU)[0].Value)
}

func TestSnapshotDefaultsToZeroWithoutSamples(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, nil)

	snapshot := sampler.Snapshot()

	assert.Zero(t, snapshot.CPUUsage)
	assert.Zero(t, snapshot.MemoryUsage)
	assert.Zero(t, snapshot.DiskUsage)
	assert.Nil(t, snapshot.NetworkUsage)
	assert.Nil(t, snapshot.GPUUsage)
	assert.Nil(t, snapshot.CPUTemp)
	assert.Equal(t, "1d 2h 3m", snapshot.Uptime)
}

func TestSnapshotCarriesLatestValuesAndDetails(t *testing.T) {
	source := newStubSource()
	source.memory = models.MemoryDetails{UsedGB: 8, TotalGB: 16}
	source.disk = models.DiskDetails{UsedGB: 100, TotalGB: 500}
	source.set(models.MetricCPU, 55)
	source.set(models.MetricMemory, 50)
	source.set(models.MetricDisk, 20)
	source.set(models.MetricNetwork, 12)
	sampler := newTestSampler(t, source, map[string]interface{}{"monitoring.network": true})

	sampler.Update()
	source.set(models.MetricCPU, 65)
	sampler.Update()

	snapshot := sampler.Snapshot()
	assert.Equal(t, 65.0, snapshot.CPUUsage)
	assert.Equal(t, 50.0, snapshot.MemoryUsage)
	assert.Equal(t, 20.0, snapshot.DiskUsage)
	assert.Equal(t, 8.0, snapshot.MemoryUsedGB)
	assert.Equal(t, 16.0, snapshot.MemoryTotalGB)
	assert.Equal(t, 100.0, snapshot.DiskUsedGB)
	assert.Equal(t, 500.0, snapshot.DiskTotalGB)
	require.NotNil(t, snapshot.NetworkUsage)
	assert.Equal(t, 12.0, *snapshot.NetworkUsage)
	assert.Nil(t, snapshot.GPUUsage)
}

func TestResetHistoryClearsAllMetrics(t *testing.T) {
	source := newStubSource()
	source.set(models.MetricCPU, 10)
	source.set(models.MetricMemory, 20)
	sampler := newTestSampler(t, source, nil)
	sampler.Update()

	sampler.ResetHistory()

	assert.Empty(t, sampler.History(models.MetricCPU))
	assert.Empty(t, sampler.History(models.MetricMemory))
}

func TestObserversNotifiedOncePerUpdate(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, nil)

	observer := &recordingObserver{}
	sampler.Subscribe(observer)
	sampler.Subscribe(observer) // duplicate registration is a no-op

	sampler.Update()
	sampler.Update()

	assert.Equal(t, 2, observer.count())
}

func TestPanickingObserverDoesNotBlockOthers(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, nil)

	observer := &recordingObserver{}
	sampler.Subscribe(&panickingObserver{})
	sampler.Subscribe(observer)

	sampler.Update()

	assert.Equal(t, 1, observer.count())
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, nil)

	observer := &recordingObserver{}
	sampler.Subscribe(observer)
	sampler.Update()
	sampler.Unsubscribe(observer)
	sampler.Update()

	assert.Equal(t, 1, observer.count())
}

func TestStartStopIdempotent(t *testing.T) {
	source := newStubSource()
	sampler := newTestSampler(t, source, map[string]interface{}{"app.update_interval": 1})

	sampler.Start()
	sampler.Start() // no-op
	sampler.Stop()
	sampler.Stop() // no-op

	// a fresh start after stop still works
	sampler.Start()
	sampler.Stop()
}
