package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
)

type SyncMonitorConfigTask struct {
	Task
	MonitorConfig *monitor.Config
	monitorRepo   database.MonitorRepository
}

func NewSyncMonitorConfigTask(monitorName string, monitorConfig *monitor.Config, monitorRepo database.MonitorRepository) *SyncMonitorConfigTask {
	return &SyncMonitorConfigTask{
		Task:          NewTask(TaskTypeSyncMonitorConfig, monitorName),
		MonitorConfig: monitorConfig,
		monitorRepo:   monitorRepo,
	}
}

func (t *SyncMonitorConfigTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := t.monitorRepo.UpsertMonitor(
		t.MonitorConfig.Name,
		t.MonitorConfig.Term,
		t.MonitorConfig.Owner)
	if err != nil {
		slog.Error("Task failed", "type", "SyncMonitorConfig", "monitor", t.MonitorName, "error", err)
		return fmt.Errorf("failed to sync monitor config to database: %w", err)
	}

	slog.Info("Task completed",
		"type", "SyncMonitorConfig",
		"monitor", t.MonitorName,
		"duration", t.GetDuration())

	return nil
}
