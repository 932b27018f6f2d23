package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
	"github.com/leonardovviana/conecta-monitor/app/tasks"
)

func NewHandler(configCache *monitor.ConfigCache, monitorRepo database.MonitorRepository,
	mentionRepo database.MentionRepository, fetcher *feed.Fetcher, parser *feed.Parser,
	defaultRules classifier.Rules, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache:  configCache,
		monitorRepo:  monitorRepo,
		mentionRepo:  mentionRepo,
		fetcher:      fetcher,
		parser:       parser,
		defaultRules: defaultRules,
		scheduler:    scheduler,
	}
}

// GetMentions serves one monitor's stored mentions, newest first.
func (h *Handler) GetMentions(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	monitorConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Monitor configuration not found", "monitor", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	limit := monitorConfig.Settings.MaxItems
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	mentions, err := h.mentionRepo.GetRecentMentions(monitorConfig.Owner, limit)
	if err != nil {
		slog.Error("Database error", "operation", "get_mentions", "monitor", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"monitor":  name,
		"count":    len(mentions),
		"mentions": lo.Map(mentions, func(m database.Mention, _ int) gin.H { return mentionJSON(m) }),
	})
}

// GetMonitorStats serves the dashboard aggregates for one monitor.
func (h *Handler) GetMonitorStats(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	monitorConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		slog.Error("Monitor configuration not found", "monitor", name, "error", err)
		c.Status(http.StatusNotFound)
		return
	}

	stats, err := h.mentionRepo.GetMentionStats(monitorConfig.Owner)
	if err != nil {
		slog.Error("Database error", "operation", "get_stats", "monitor", name, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	topSources := lo.Map(stats.TopSources, func(sc database.SourceCount, _ int) gin.H {
		return gin.H{"source": sc.Source, "count": sc.Count}
	})

	c.JSON(http.StatusOK, gin.H{
		"monitor":     name,
		"total":       stats.Total,
		"sentiment":   stats.Sentiment,
		"priority":    stats.Priority,
		"top_sources": topSources,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if monitorCount, err := h.monitorRepo.GetMonitorCount(); err == nil {
		health["monitors"] = monitorCount
	}

	health["loaded_configurations"] = h.configCache.GetConfigCount()

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats := map[string]interface{}{
		"loaded_configurations": h.configCache.GetConfigCount(),
	}

	if monitorCount, err := h.monitorRepo.GetMonitorCount(); err == nil {
		stats["monitors"] = monitorCount
	}
	if mentionCount, err := h.mentionRepo.GetMentionCount(); err == nil {
		stats["mentions"] = mentionCount
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListMonitors(c *gin.Context) {
	configs := h.configCache.GetConfigs()

	monitors := make([]map[string]interface{}, 0, len(configs))

	for _, monitorConfig := range configs {
		monitorInfo := map[string]interface{}{
			"name":             monitorConfig.Name,
			"term":             monitorConfig.Term,
			"enabled":          monitorConfig.Settings.Enabled,
			"max_items":        monitorConfig.Settings.MaxItems,
			"refresh_interval": (time.Duration(monitorConfig.Settings.RefreshInterval) * time.Second).String(),
			"extract_content":  monitorConfig.Settings.ExtractContent,
		}

		if stored, err := h.monitorRepo.GetMonitor(monitorConfig.Name); err == nil && stored != nil {
			monitorInfo["last_fetched_at"] = stored.LastFetchedAt
			monitorInfo["next_fetch_at"] = stored.NextFetchAt
			monitorInfo["updated_at"] = stored.UpdatedAt
		}

		monitors = append(monitors, monitorInfo)
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(monitors),
		"monitors": monitors,
	})
}

// APIRefreshMonitor enqueues an immediate ingestion run for one monitor.
func (h *Handler) APIRefreshMonitor(c *gin.Context) {
	name := c.Param("name")
	if name == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	monitorConfig, err := h.configCache.GetConfig(name)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "monitor not found"})
		return
	}

	task := tasks.NewProcessMonitorTask(monitorConfig.Name, monitorConfig, h.fetcher, h.parser, h.defaultRules, h.monitorRepo, h.mentionRepo)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Failed to enqueue refresh task", "monitor", name, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "failed to schedule refresh"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"monitor": name,
		"status":  "scheduled",
	})
}

func mentionJSON(m database.Mention) gin.H {
	return gin.H{
		"id":           m.ID,
		"title":        m.Title,
		"source":       m.Source,
		"source_type":  m.SourceType,
		"sentiment":    m.Sentiment,
		"priority":     m.Priority,
		"excerpt":      m.Excerpt,
		"url":          m.URL,
		"published_at": m.PublishedAt.Format(time.RFC3339),
		"created_at":   m.CreatedAt.Format(time.RFC3339),
	}
}
