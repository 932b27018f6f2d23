package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/ingest"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
)

type ProcessMonitorTask struct {
	Task
	MonitorConfig *monitor.Config
	fetcher       *feed.Fetcher
	parser        *feed.Parser
	defaultRules  classifier.Rules
	monitorRepo   database.MonitorRepository
	mentionRepo   database.MentionRepository
}

func NewProcessMonitorTask(monitorName string, monitorConfig *monitor.Config, fetcher *feed.Fetcher, parser *feed.Parser, defaultRules classifier.Rules, monitorRepo database.MonitorRepository, mentionRepo database.MentionRepository) *ProcessMonitorTask {
	return &ProcessMonitorTask{
		Task:          NewTask(TaskTypeProcessMonitor, monitorName),
		MonitorConfig: monitorConfig,
		fetcher:       fetcher,
		parser:        parser,
		defaultRules:  defaultRules,
		monitorRepo:   monitorRepo,
		mentionRepo:   mentionRepo,
	}
}

func (t *ProcessMonitorTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.MonitorConfig.Settings.Enabled {
		slog.Debug("Monitor disabled, skipping", "monitor", t.MonitorName)
		return nil
	}

	pipeline := ingest.NewPipeline(t.fetcher, t.parser, classifier.New(t.resolveRules()), t.mentionRepo)

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(t.MonitorConfig.Settings.Timeout)*time.Second)
	defer cancel()

	result, err := pipeline.Run(runCtx, t.MonitorConfig.Term, t.MonitorConfig.Owner, classifier.SourceTypeNews)
	if err != nil {
		return fmt.Errorf("failed to ingest mentions: %w", err)
	}

	if err := t.updateFetchState(); err != nil {
		return err
	}

	for _, itemErr := range result.Errors {
		slog.Warn("Mention not stored", "monitor", t.MonitorName, "error", itemErr)
	}

	slog.Info("Task completed",
		"type", "ProcessMonitor",
		"monitor", t.MonitorName,
		"duration", t.GetDuration(),
		"total", result.Total,
		"saved", result.Saved,
		"duplicates", result.Duplicates,
		"failed", result.Failed)

	return nil
}

// resolveRules loads the monitor's own keyword rules when configured,
// falling back to the service defaults on any load failure.
func (t *ProcessMonitorTask) resolveRules() classifier.Rules {
	if t.MonitorConfig.RulesFile == "" {
		return t.defaultRules
	}

	rules, err := classifier.LoadRules(t.MonitorConfig.RulesFile)
	if err != nil {
		slog.Warn("Failed to load monitor rules, using defaults", "monitor", t.MonitorName, "rules_file", t.MonitorConfig.RulesFile, "error", err)
		return t.defaultRules
	}

	return rules
}

func (t *ProcessMonitorTask) updateFetchState() error {
	now := time.Now().UTC()
	nextFetch := now.Add(time.Duration(t.MonitorConfig.Settings.RefreshInterval) * time.Second)

	if err := t.monitorRepo.UpdateMonitorFetched(t.MonitorName, nextFetch); err != nil {
		return fmt.Errorf("failed to update monitor fetch state: %w", err)
	}

	return nil
}
