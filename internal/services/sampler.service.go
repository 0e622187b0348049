package services

import (
	"context"
	"log"
	"sync"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"
)

const (
	defaultUpdateInterval = 5 * time.Second
	defaultHistorySize    = 100

	// extra wait after a tick that panicked, before the loop retries
	samplerErrorBackoff = 5 * time.Second

	// how long Stop waits for an in-flight tick to finish
	stopJoinTimeout = 2 * time.Second
)

// Observer is notified once per completed sampler update
type Observer interface {
	MetricsUpdated()
}

// Sampler periodically pulls current values from the resource source,
// appends them to per-metric bounded histories and notifies observers.
// Histories are written only by the sampler and read-shared with the
// analyzer and alert manager under the sampler's lock.
type Sampler struct {
	mu        sync.RWMutex
	source    ResourceSource
	histories map[models.Metric][]models.Sample
	observers []Observer

	historySize int
	interval    time.Duration
	enabled     map[models.Metric]bool

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// NewSampler creates a sampler configured from the provider
func NewSampler(cfg config.Provider, source ResourceSource) *Sampler {
	s := &Sampler{
		source:    source,
		histories: make(map[models.Metric][]models.Sample, len(models.AllMetrics)),
		now:       time.Now,
	}
	s.configure(cfg)
	return s
}

func (s *Sampler) configure(cfg config.Provider) {
	s.interval = time.Duration(cfg.GetInt("app.update_interval", int(defaultUpdateInterval/time.Second))) * time.Second
	s.historySize = cfg.GetInt("app.history_size", defaultHistorySize)
	s.enabled = map[models.Metric]bool{
		models.MetricCPU:     cfg.GetBool("monitoring.cpu", true),
		models.MetricMemory:  cfg.GetBool("monitoring.memory", true),
		models.MetricDisk:    cfg.GetBool("monitoring.disk", true),
		models.MetricNetwork: cfg.GetBool("monitoring.network", false),
		models.MetricGPU:     cfg.GetBool("monitoring.gpu", false),
	}
	for _, metric := range models.AllMetrics {
		s.histories[metric] = nil
	}
}

// Start launches the background sampling loop. Calling Start on a
// running sampler is a no-op.
func (s *Sampler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		log.Println("[sampler] already running")
		return
	}
	s.running = true
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.loop(ctx)
	log.Printf("[sampler] started (interval: %v)", s.interval)
}

// Stop signals the loop to exit and waits up to 2s for the in-flight
// tick to finish. Calling Stop on a stopped sampler is a no-op.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		log.Println("[sampler] not running")
		return
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	if !joinTimeout(&s.wg, stopJoinTimeout) {
		log.Println("[sampler] loop did not exit within the join timeout")
	}
	log.Println("[sampler] stopped")
}

func (s *Sampler) loop(ctx context.Context) {
	defer s.wg.Done()

	for {
		delay := s.interval
		if !s.tick() {
			delay = samplerErrorBackoff
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// tick runs one update, containing any panic at the loop boundary
func (s *Sampler) tick() (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sampler] update failed: %v", r)
			ok = false
		}
	}()
	s.Update()
	return true
}

// Update samples every enabled metric once and notifies observers.
// A failing probe is logged and does not block the other metrics.
func (s *Sampler) Update() {
	now := s.now()
	for _, metric := range models.AllMetrics {
		if !s.enabled[metric] {
			continue
		}

		// probe outside the lock; source calls can be slow
		value, err := s.source.GetResourceValue(metric)
		if err != nil {
			log.Printf("[sampler] %s probe failed: %v", metric, err)
			continue
		}
		s.append(metric, models.Sample{Timestamp: now, Value: value})
	}
	s.notifyObservers()
}

func (s *Sampler) append(metric models.Metric, sample models.Sample) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.histories[metric], sample)
	if len(history) > s.historySize {
		history = history[1:]
	}
	s.histories[metric] = history
}

// Subscribe registers an observer. Duplicate registration is a no-op.
func (s *Sampler) Subscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.observers {
		if existing == observer {
			return
		}
	}
	s.observers = append(s.observers, observer)
}

// Unsubscribe removes a previously registered observer
func (s *Sampler) Unsubscribe(observer Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, existing := range s.observers {
		if existing == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

func (s *Sampler) notifyObservers() {
	s.mu.RLock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.RUnlock()

	for _, observer := range observers {
		notifyObserver(observer)
	}
}

// notifyObserver isolates a panicking observer from the rest
func notifyObserver(observer Observer) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sampler] observer notification failed: %v", r)
		}
	}()
	observer.MetricsUpdated()
}

// History returns a copy of a metric's sample history, oldest first.
// Unknown or never-sampled metrics yield an empty slice.
func (s *Sampler) History(metric models.Metric) []models.Sample {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[metric]
	out := make([]models.Sample, len(history))
	copy(out, history)
	return out
}

// ResetHistory clears all metric histories
func (s *Sampler) ResetHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for metric := range s.histories {
		s.histories[metric] = nil
	}
	log.Println("[sampler] history reset")
}

// Snapshot builds a point-in-time resource view from the latest sample
// of each history plus detail lookups against the source. Metrics with
// no samples yet report zero.
func (s *Sampler) Snapshot() models.ResourceSnapshot {
	// detail probes happen outside the history lock
	memory, err := s.source.GetMemoryDetails()
	if err != nil {
		log.Printf("[sampler] memory details unavailable: %v", err)
	}
	diskSpace, err := s.source.GetDiskDetails()
	if err != nil {
		log.Printf("[sampler] disk details unavailable: %v", err)
	}
	temperature, tempErr := s.source.GetCPUTemperature()
	uptime, err := s.source.GetUptime()
	if err != nil {
		uptime = "N/A"
	}

	s.mu.RLock()
	snapshot := models.ResourceSnapshot{
		CPUUsage:      s.latestLocked(models.MetricCPU),
		MemoryUsage:   s.latestLocked(models.MetricMemory),
		DiskUsage:     s.latestLocked(models.MetricDisk),
		MemoryUsedGB:  memory.UsedGB,
		MemoryTotalGB: memory.TotalGB,
		DiskUsedGB:    diskSpace.UsedGB,
		DiskTotalGB:   diskSpace.TotalGB,
		Uptime:        uptime,
		Timestamp:     s.now(),
	}
	if s.enabled[models.MetricNetwork] {
		value := s.latestLocked(models.MetricNetwork)
		snapshot.NetworkUsage = &value
	}
	if s.enabled[models.MetricGPU] {
		value := s.latestLocked(models.MetricGPU)
		snapshot.GPUUsage = &value
	}
	s.mu.RUnlock()

	if tempErr == nil {
		snapshot.CPUTemp = &temperature
	}
	return snapshot
}

// latestLocked returns a metric's most recent value; caller holds the lock
func (s *Sampler) latestLocked(metric models.Metric) float64 {
	history := s.histories[metric]
	if len(history) == 0 {
		return 0.0
	}
	return history[len(history)-1].Value
}

// joinTimeout waits for wg up to d, reporting whether it finished
func joinTimeout(wg *sync.WaitGroup, d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
