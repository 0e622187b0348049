package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"pehredar/internal/config"
	"pehredar/internal/models"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

const gb = 1024 * 1024 * 1024

// ResourceSource provides current resource readings. The production
// implementation probes the OS; tests substitute a stub.
type ResourceSource interface {
	GetResourceValue(metric models.Metric) (float64, error)
	GetMemoryDetails() (models.MemoryDetails, error)
	GetDiskDetails() (models.DiskDetails, error)
	GetCPUTemperature() (float64, error)
	GetUptime() (string, error)
}

// SystemSource reads resource usage through gopsutil. Detail probes are
// cached with a short TTL so a sampler tick and an on-demand snapshot
// in the same second do not probe twice.
type SystemSource struct {
	mu       sync.Mutex
	diskPath string
	ttl      time.Duration

	memCache  models.MemoryDetails
	memTime   time.Time
	diskCache models.DiskDetails
	diskTime  time.Time

	// network utilization is derived from IO counter deltas against a
	// configured link capacity
	capacityMbps float64
	lastNetSent  uint64
	lastNetRecv  uint64
	lastNetTime  time.Time
}

// NewSystemSource creates a gopsutil-backed resource source
func NewSystemSource(cfg config.Provider) *SystemSource {
	return &SystemSource{
		diskPath:     cfg.GetString("monitoring.disk_path", "/"),
		capacityMbps: cfg.GetFloat("monitoring.network_capacity_mbps", 1000),
		ttl:          time.Second,
	}
}

// GetResourceValue returns the current usage percentage for a metric
func (s *SystemSource) GetResourceValue(metric models.Metric) (float64, error) {
	switch metric {
	case models.MetricCPU:
		percentages, err := cpu.Percent(0, false)
		if err != nil {
			return 0, fmt.Errorf("failed to get CPU percentage: %w", err)
		}
		if len(percentages) == 0 {
			return 0, errors.New("no CPU usage reported")
		}
		return percentages[0], nil

	case models.MetricMemory:
		virtualMemory, err := mem.VirtualMemory()
		if err != nil {
			return 0, fmt.Errorf("failed to get memory info: %w", err)
		}
		return virtualMemory.UsedPercent, nil

	case models.MetricDisk:
		usage, err := disk.Usage(s.diskPath)
		if err != nil {
			return 0, fmt.Errorf("failed to get disk usage for %s: %w", s.diskPath, err)
		}
		return usage.UsedPercent, nil

	case models.MetricNetwork:
		return s.networkPercent()

	case models.MetricGPU:
		return 0, errors.New("gpu usage is not supported on this host")
	}
	return 0, fmt.Errorf("unknown metric: %s", metric)
}

// GetMemoryDetails returns used/total memory in GB
func (s *SystemSource) GetMemoryDetails() (models.MemoryDetails, error) {
	s.mu.Lock()
	if time.Since(s.memTime) < s.ttl && !s.memTime.IsZero() {
		defer s.mu.Unlock()
		return s.memCache, nil
	}
	s.mu.Unlock()

	virtualMemory, err := mem.VirtualMemory()
	if err != nil {
		return models.MemoryDetails{}, fmt.Errorf("failed to get memory info: %w", err)
	}

	details := models.MemoryDetails{
		UsedGB:  float64(virtualMemory.Used) / gb,
		TotalGB: float64(virtualMemory.Total) / gb,
	}

	s.mu.Lock()
	s.memCache = details
	s.memTime = time.Now()
	s.mu.Unlock()

	return details, nil
}

// GetDiskDetails returns used/total disk space in GB
func (s *SystemSource) GetDiskDetails() (models.DiskDetails, error) {
	s.mu.Lock()
	if time.Since(s.diskTime) < s.ttl && !s.diskTime.IsZero() {
		defer s.mu.Unlock()
		return s.diskCache, nil
	}
	s.mu.Unlock()

	usage, err := disk.Usage(s.diskPath)
	if err != nil {
		return models.DiskDetails{}, fmt.Errorf("failed to get disk usage for %s: %w", s.diskPath, err)
	}

	details := models.DiskDetails{
		UsedGB:  float64(usage.Used) / gb,
		TotalGB: float64(usage.Total) / gb,
	}

	s.mu.Lock()
	s.diskCache = details
	s.diskTime = time.Now()
	s.mu.Unlock()

	return details, nil
}

// GetCPUTemperature returns the CPU package temperature when a sensor
// exposes one
func (s *SystemSource) GetCPUTemperature() (float64, error) {
	sensors, err := host.SensorsTemperatures()
	if err != nil {
		return 0, fmt.Errorf("failed to read temperature sensors: %w", err)
	}

	for _, sensor := range sensors {
		key := strings.ToLower(sensor.SensorKey)
		if strings.Contains(key, "coretemp") || strings.Contains(key, "k10temp") || strings.Contains(key, "cpu") {
			if sensor.Temperature > 0 {
				return sensor.Temperature, nil
			}
		}
	}
	return 0, errors.New("no CPU temperature sensor found")
}

// GetUptime returns the host uptime formatted as "3d 4h 12m"
func (s *SystemSource) GetUptime() (string, error) {
	seconds, err := host.Uptime()
	if err != nil {
		return "", fmt.Errorf("failed to get uptime: %w", err)
	}

	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dd %dh %dm", days, hours, minutes), nil
}

// networkPercent derives link utilization from IO counter deltas. The
// first call only records a baseline and reports zero.
func (s *SystemSource) networkPercent() (float64, error) {
	counters, err := net.IOCounters(false)
	if err != nil {
		return 0, fmt.Errorf("failed to get network IO counters: %w", err)
	}
	if len(counters) == 0 {
		return 0, errors.New("no network interfaces found")
	}

	current := counters[0]
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	// counter reset (interface bounce) invalidates the baseline
	if s.lastNetTime.IsZero() || current.BytesSent < s.lastNetSent || current.BytesRecv < s.lastNetRecv {
		s.lastNetSent = current.BytesSent
		s.lastNetRecv = current.BytesRecv
		s.lastNetTime = now
		return 0, nil
	}

	elapsed := now.Sub(s.lastNetTime).Seconds()
	if elapsed <= 0 {
		elapsed = 1
	}

	bits := float64(current.BytesSent-s.lastNetSent+current.BytesRecv-s.lastNetRecv) * 8
	s.lastNetSent = current.BytesSent
	s.lastNetRecv = current.BytesRecv
	s.lastNetTime = now

	percent := bits / elapsed / (s.capacityMbps * 1e6) * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	return percent, nil
}
