package pipeline

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"fitforge/internal/stage"
	"fitforge/internal/workspace"
)

// HealthSnapshot is the worker's liveness surface, served by the status API
// and the check command.
type HealthSnapshot struct {
	Status         string         `json:"status"`
	Uptime         time.Duration  `json:"uptime"`
	ProcessedCount int64          `json:"processedCount"`
	ErrorCount     int64          `json:"errorCount"`
	LastActivity   time.Time      `json:"lastActivity"`
	MemoryPercent  float64        `json:"memoryPercent"`
	CPUPercent     float64        `json:"cpuPercent"`
	DiskFreeBytes  uint64         `json:"diskFreeBytes"`
	ModelsLoaded   bool           `json:"modelsLoaded"`
	Stages         []stage.Health `json:"stages"`
}

// Health gathers the snapshot. Resource probes are best-effort: a failed
// probe zeroes its field rather than degrading status.
func (p *Processor) Health(ctx context.Context) HealthSnapshot {
	snap := p.stats.Snapshot()

	health := HealthSnapshot{
		Status:         "healthy",
		Uptime:         time.Since(p.startedAt),
		ProcessedCount: snap.ProcessedCount,
		ErrorCount:     snap.ErrorCount,
		LastActivity:   snap.LastActivity,
		ModelsLoaded:   p.modelsLoaded(),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		health.MemoryPercent = vm.UsedPercent
	}
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		health.CPUPercent = percents[0]
	}
	if free, err := workspace.DiskFree(p.workspaces.Root()); err == nil {
		health.DiskFreeBytes = free
	}

	for _, st := range p.stages {
		sh := st.Handler.HealthCheck(ctx)
		health.Stages = append(health.Stages, sh)
		if !sh.Ready {
			health.Status = "degraded"
		}
	}
	return health
}
