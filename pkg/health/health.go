// Package health runs named checks against a running simulation and
// aggregates them into one status. The flight simulator runs the checks at
// every status report.
package health

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Status values reported by HealthChecker
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)

// HealthCheck defines the interface for individual health checks.
type HealthCheck interface {
	// Name returns the unique name of this health check
	Name() string
	// Check performs the health check and returns an error if unhealthy
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated result of every registered check.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// Healthy reports whether every check passed
func (s HealthStatus) Healthy() bool {
	return s.Status == StatusHealthy
}

// Failing returns the names of failed checks in sorted order
func (s HealthStatus) Failing() []string {
	var names []string
	for name, c := range s.Checks {
		if c.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// ComponentHealth represents the health status of an individual check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker manages and executes health checks.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates a new health checker instance.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers a health check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck removes a health check by name.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every registered check. The overall status is healthy
// only if all checks pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: StatusHealthy,
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}

	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = StatusUnhealthy
			status.Checks[name] = ComponentHealth{
				Status:  StatusUnhealthy,
				Message: err.Error(),
			}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: StatusHealthy}
	}

	return status
}

// BodySample is the part of a body's state the bounds check looks at
type BodySample struct {
	Name     string
	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// BoundsHealthCheck fails when a body has a non-finite position or
// velocity, or has left the world cube.
type BoundsHealthCheck struct {
	halfSize float64
	bodies   func() []BodySample
}

// NewBoundsHealthCheck checks bodies against a cube of worldSize centred
// on the origin.
func NewBoundsHealthCheck(worldSize float64, bodies func() []BodySample) *BoundsHealthCheck {
	return &BoundsHealthCheck{
		halfSize: worldSize / 2,
		bodies:   bodies,
	}
}

// Name returns the name of this health check.
func (b *BoundsHealthCheck) Name() string {
	return "bounds"
}

// Check reports the first offending body.
func (b *BoundsHealthCheck) Check(ctx context.Context) error {
	for _, body := range b.bodies() {
		if !finite(body.Position) {
			return fmt.Errorf("%s has non-finite position %v", body.Name, body.Position)
		}
		if !finite(body.Velocity) {
			return fmt.Errorf("%s has non-finite velocity %v", body.Name, body.Velocity)
		}
		for _, c := range body.Position {
			if math.Abs(c) > b.halfSize {
				return fmt.Errorf("%s left the world at %v", body.Name, body.Position)
			}
		}
	}
	return nil
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// ProgressHealthCheck fails when the tick counter has not moved since the
// previous check.
type ProgressHealthCheck struct {
	currentTick func() uint64

	mu      sync.Mutex
	last    uint64
	checked bool
}

// NewProgressHealthCheck creates a stall check over currentTick.
func NewProgressHealthCheck(currentTick func() uint64) *ProgressHealthCheck {
	return &ProgressHealthCheck{currentTick: currentTick}
}

// Name returns the name of this health check.
func (p *ProgressHealthCheck) Name() string {
	return "progress"
}

// Check compares the tick with the one seen by the previous call. The
// first call always passes.
func (p *ProgressHealthCheck) Check(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tick := p.currentTick()
	stalled := p.checked && tick <= p.last
	p.last = tick
	p.checked = true

	if stalled {
		return fmt.Errorf("simulation stalled at tick %d", tick)
	}
	return nil
}

// MemoryHealthCheck implements HealthCheck for memory usage monitoring.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a health check for memory usage. A nil
// getMemoryUsage reads the Go heap.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	if getMemoryUsage == nil {
		getMemoryUsage = HeapMB
	}
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name returns the name of this health check.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check verifies that memory usage is within acceptable limits.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	currentMB := m.getMemoryUsage()
	if currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}

// HeapMB returns the allocated heap in megabytes
func HeapMB() int64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return int64(m.Alloc / 1024 / 1024)
}
