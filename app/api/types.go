package api

import (
	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
	"github.com/leonardovviana/conecta-monitor/app/tasks"
)

type Handler struct {
	configCache  *monitor.ConfigCache
	monitorRepo  database.MonitorRepository
	mentionRepo  database.MentionRepository
	fetcher      *feed.Fetcher
	parser       *feed.Parser
	defaultRules classifier.Rules
	scheduler    tasks.TaskSchedulerInterface
}
