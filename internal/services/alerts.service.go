package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"
)

const (
	defaultCheckInterval = 60 * time.Second
	defaultCooldown      = 300 * time.Second
)

// default thresholds, by metric, when the configuration carries none
var defaultThresholds = map[models.Metric]float64{
	models.MetricCPU:     80.0,
	models.MetricMemory:  85.0,
	models.MetricDisk:    90.0,
	models.MetricNetwork: 80.0,
	models.MetricGPU:     75.0,
}

// AlertNotifier receives every raised alert, synchronously and in
// registration order
type AlertNotifier interface {
	AlertRaised(alert models.Alert)
}

// SnapshotSource supplies the current resource view; the sampler is
// the production implementation
type SnapshotSource interface {
	Snapshot() models.ResourceSnapshot
}

// AlertManager evaluates resource thresholds, keeps the active alert
// set, suppresses duplicates within a per-resource cooldown window and
// fans raised alerts out to notifiers and email.
type AlertManager struct {
	mu        sync.RWMutex
	cfg       config.Provider
	snapshots SnapshotSource
	mailer    Mailer

	active     []models.Alert
	thresholds map[models.Metric]float64
	lastAlert  map[models.Metric]time.Time
	notifiers  []AlertNotifier

	checkInterval time.Duration
	cooldown      time.Duration

	emailEnabled bool
	emailTo      string
	emailFrom    string
	emailServer  string

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	now func() time.Time
}

// NewAlertManager creates an alert manager configured from the provider
func NewAlertManager(cfg config.Provider, snapshots SnapshotSource, mailer Mailer) *AlertManager {
	m := &AlertManager{
		cfg:       cfg,
		snapshots: snapshots,
		mailer:    mailer,
		lastAlert: make(map[models.Metric]time.Time),
		now:       time.Now,
	}
	m.configure(cfg)
	return m
}

func (m *AlertManager) configure(cfg config.Provider) {
	m.thresholds = make(map[models.Metric]float64, len(defaultThresholds))
	for metric, def := range defaultThresholds {
		m.thresholds[metric] = cfg.GetFloat("alerts."+string(metric)+"_threshold", def)
	}

	m.checkInterval = time.Duration(cfg.GetInt("alerts.check_interval", int(defaultCheckInterval/time.Second))) * time.Second
	m.cooldown = time.Duration(cfg.GetInt("alerts.cooldown", int(defaultCooldown/time.Second))) * time.Second

	m.emailEnabled = cfg.GetBool("alerts.email_notifications", false)
	m.emailTo = cfg.GetString("alerts.email_to", "")
	m.emailFrom = cfg.GetString("alerts.email_from", "monitor@example.com")
	m.emailServer = cfg.GetString("alerts.email_server", "smtp.example.com")
}

// Start launches the periodic check loop. Calling Start on a running
// manager is a no-op.
func (m *AlertManager) Start() {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		log.Println("[alerts] already running")
		return
	}
	m.running = true
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.wg.Add(1)
	m.mu.Unlock()

	go m.loop(ctx)
	log.Printf("[alerts] started (interval: %v)", m.checkInterval)
}

// Stop signals the loop to exit and waits up to 2s for the in-flight
// pass to finish. Calling Stop on a stopped manager is a no-op.
func (m *AlertManager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		log.Println("[alerts] not running")
		return
	}
	m.running = false
	cancel := m.cancel
	m.mu.Unlock()

	cancel()
	if !joinTimeout(&m.wg, stopJoinTimeout) {
		log.Println("[alerts] loop did not exit within the join timeout")
	}
	log.Println("[alerts] stopped")
}

func (m *AlertManager) loop(ctx context.Context) {
	defer m.wg.Done()

	for {
		m.checkPass()

		select {
		case <-ctx.Done():
			return
		case <-time.After(m.checkInterval):
		}
	}
}

// checkPass contains any panic at the loop boundary
func (m *AlertManager) checkPass() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[alerts] check failed: %v", r)
		}
	}()
	m.CheckResources()
}

// MetricsUpdated runs an alert pass after each completed sampler
// update, so the manager reacts faster than its own check interval
func (m *AlertManager) MetricsUpdated() {
	m.CheckResources()
}

// CheckResources evaluates every monitored metric against its
// threshold, then resolves active alerts whose values recovered
func (m *AlertManager) CheckResources() {
	snapshot := m.snapshots.Snapshot()

	for _, metric := range models.AllMetrics {
		value, monitored := snapshot.Usage(metric)
		if !monitored {
			continue
		}
		m.checkResource(metric, value)
	}

	m.resolveAlerts(snapshot)
}

func (m *AlertManager) checkResource(metric models.Metric, value float64) {
	m.mu.Lock()
	threshold, ok := m.thresholds[metric]
	if !ok {
		threshold = 100.0
	}
	if value <= threshold {
		m.mu.Unlock()
		return
	}

	// suppress duplicates within the cooldown window; the cooldown
	// clock is keyed by resource, independent of the active set
	now := m.now()
	if last, ok := m.lastAlert[metric]; ok && now.Sub(last) <= m.cooldown {
		m.mu.Unlock()
		return
	}

	alert := models.NewAlert(now, metric, value, threshold)
	m.active = append(m.active, alert)
	m.lastAlert[metric] = now

	notifiers := make([]AlertNotifier, len(m.notifiers))
	copy(notifiers, m.notifiers)
	emailEnabled := m.emailEnabled && m.emailTo != ""
	m.mu.Unlock()

	log.Printf("[alerts] raised: %s", alert.Message)

	for _, notifier := range notifiers {
		notifyAlert(notifier, alert)
	}

	// best-effort; must never block or fail the alert-raising path
	if emailEnabled {
		go m.sendEmail(alert)
	}
}

// notifyAlert isolates a panicking notifier from the rest
func notifyAlert(notifier AlertNotifier, alert models.Alert) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[alerts] notifier failed: %v", r)
		}
	}()
	notifier.AlertRaised(alert)
}

// resolveAlerts removes active alerts whose resource has dropped back
// below the threshold recorded at trigger time
func (m *AlertManager) resolveAlerts(snapshot models.ResourceSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.active[:0]
	for _, alert := range m.active {
		value, monitored := snapshot.Usage(alert.ResourceType)
		if monitored && value < alert.Threshold {
			log.Printf("[alerts] resolved: %s back at %.1f%%", alert.ResourceType, value)
			continue
		}
		kept = append(kept, alert)
	}
	m.active = kept
}

// RegisterNotifier adds a notification target. Duplicate registration
// is a no-op.
func (m *AlertManager) RegisterNotifier(notifier AlertNotifier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.notifiers {
		if existing == notifier {
			return
		}
	}
	m.notifiers = append(m.notifiers, notifier)
}

// UnregisterNotifier removes a previously registered target
func (m *AlertManager) UnregisterNotifier(notifier AlertNotifier) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.notifiers {
		if existing == notifier {
			m.notifiers = append(m.notifiers[:i], m.notifiers[i+1:]...)
			return
		}
	}
}

// GetActiveAlerts returns a copy of the active alert set
func (m *AlertManager) GetActiveAlerts() []models.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Alert, len(m.active))
	copy(out, m.active)
	return out
}

// GetThresholds returns a copy of the current thresholds
func (m *AlertManager) GetThresholds() map[models.Metric]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[models.Metric]float64, len(m.thresholds))
	for metric, threshold := range m.thresholds {
		out[metric] = threshold
	}
	return out
}

// SetThreshold updates a resource threshold and persists it to the
// configuration. Unknown resources and values outside [0,100] are
// rejected without mutation.
func (m *AlertManager) SetThreshold(metric models.Metric, value float64) error {
	m.mu.Lock()
	if _, ok := m.thresholds[metric]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown resource type: %s", metric)
	}
	if value < 0 || value > 100 {
		m.mu.Unlock()
		return fmt.Errorf("threshold out of range: %.1f", value)
	}
	m.thresholds[metric] = value
	m.mu.Unlock()

	if err := m.cfg.Set("alerts."+string(metric)+"_threshold", value); err != nil {
		log.Printf("[alerts] failed to persist threshold for %s: %v", metric, err)
	}
	log.Printf("[alerts] threshold for %s set to %.1f%%", metric, value)
	return nil
}

// ClearAlerts empties the active set. Cooldown bookkeeping is kept, so
// a cleared resource cannot re-alert until its cooldown expires.
func (m *AlertManager) ClearAlerts() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.active = nil
	log.Println("[alerts] all alerts cleared")
}

// sendEmail dispatches an alert notification; failures are logged and
// swallowed
func (m *AlertManager) sendEmail(alert models.Alert) {
	m.mu.RLock()
	server, from, to := m.emailServer, m.emailFrom, m.emailTo
	m.mu.RUnlock()

	subject := fmt.Sprintf("[ALERT] %s - resource monitor", alert.ResourceType)
	if err := m.mailer.Send(server, from, to, subject, alertEmailBody(alert)); err != nil {
		log.Printf("[alerts] email notification failed: %v", err)
		return
	}
	log.Printf("[alerts] email notification sent for %s", alert.ResourceType)
}
