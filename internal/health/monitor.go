// Package health watches system resources and rejects work when the host is
// under pressure. Checks run against live readings; nothing is sampled in
// the background.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/sirupsen/logrus"

	"github.com/skin-wellness-navigator/internal/domain"
)

// Metrics is a point-in-time resource snapshot reported by the health
// endpoint.
type Metrics struct {
	MemoryPercent float64 `json:"memory_percent"`
	CPUPercent    float64 `json:"cpu_percent"`
	DiskPercent   float64 `json:"disk_percent"`
	Overloaded    bool    `json:"overloaded"`
}

// readings abstracts gopsutil so tests can inject fixed values.
type readings interface {
	memoryPercent(ctx context.Context) (float64, error)
	cpuPercent(ctx context.Context) (float64, error)
	diskPercent(ctx context.Context) (float64, error)
}

type systemReadings struct{}

func (systemReadings) memoryPercent(ctx context.Context) (float64, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return vm.UsedPercent, nil
}

func (systemReadings) cpuPercent(ctx context.Context) (float64, error) {
	// Instantaneous reading; a sampling interval would stall every request.
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return 0, err
	}
	if len(percents) == 0 {
		return 0, nil
	}
	return percents[0], nil
}

func (systemReadings) diskPercent(ctx context.Context) (float64, error) {
	usage, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return 0, err
	}
	return usage.UsedPercent, nil
}

// Monitor implements domain.OverloadChecker against host resource readings.
type Monitor struct {
	config  domain.HealthConfig
	source  readings
	logger  *logrus.Logger
	started time.Time
}

// NewMonitor creates a monitor with the given thresholds. Thresholds at or
// below zero disable the corresponding check.
func NewMonitor(config domain.HealthConfig, logger *logrus.Logger) *Monitor {
	return &Monitor{
		config:  config,
		source:  systemReadings{},
		logger:  logger,
		started: time.Now(),
	}
}

// Check returns domain.ErrSystemOverload when any enabled threshold is
// exceeded. Readings that fail are skipped; an unreadable metric must not
// take the service down.
func (m *Monitor) Check(ctx context.Context) error {
	metrics := m.collect(ctx)

	if m.exceeded(metrics.MemoryPercent, m.config.MemoryThresholdPercent) {
		return m.overload("memory", metrics.MemoryPercent, m.config.MemoryThresholdPercent)
	}
	if m.exceeded(metrics.CPUPercent, m.config.CPUThresholdPercent) {
		return m.overload("cpu", metrics.CPUPercent, m.config.CPUThresholdPercent)
	}
	if m.exceeded(metrics.DiskPercent, m.config.DiskThresholdPercent) {
		return m.overload("disk", metrics.DiskPercent, m.config.DiskThresholdPercent)
	}
	return nil
}

// Snapshot returns current readings for the health endpoint.
func (m *Monitor) Snapshot(ctx context.Context) Metrics {
	metrics := m.collect(ctx)
	metrics.Overloaded = m.Check(ctx) != nil
	return metrics
}

// Uptime reports time since the monitor was created.
func (m *Monitor) Uptime() time.Duration {
	return time.Since(m.started)
}

func (m *Monitor) collect(ctx context.Context) Metrics {
	var metrics Metrics
	var err error

	if metrics.MemoryPercent, err = m.source.memoryPercent(ctx); err != nil {
		m.logger.WithError(err).Warn("Failed to read memory usage")
	}
	if metrics.CPUPercent, err = m.source.cpuPercent(ctx); err != nil {
		m.logger.WithError(err).Warn("Failed to read CPU usage")
	}
	if metrics.DiskPercent, err = m.source.diskPercent(ctx); err != nil {
		m.logger.WithError(err).Warn("Failed to read disk usage")
	}
	return metrics
}

func (m *Monitor) exceeded(value, threshold float64) bool {
	return threshold > 0 && value > threshold
}

func (m *Monitor) overload(resource string, value, threshold float64) error {
	m.logger.WithFields(logrus.Fields{
		"resource":  resource,
		"usage":     value,
		"threshold": threshold,
	}).Warn("System overloaded, rejecting request")
	return fmt.Errorf("%s usage %.1f%% exceeds %.1f%%: %w",
		resource, value, threshold, domain.ErrSystemOverload)
}
