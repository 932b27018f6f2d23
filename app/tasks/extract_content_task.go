package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
	"github.com/leonardovviana/conecta-monitor/app/monitor"
)

type ExtractContentTask struct {
	Task
	MonitorConfig    *monitor.Config
	httpClient       *http.Client
	contentExtractor *feed.ContentExtractor
	mentionRepo      database.MentionRepository
	userAgent        string
}

func NewExtractContentTask(monitorName string, monitorConfig *monitor.Config, httpClient *http.Client, contentExtractor *feed.ContentExtractor, mentionRepo database.MentionRepository, userAgent string) *ExtractContentTask {
	return &ExtractContentTask{
		Task:             NewTask(TaskTypeExtractContent, monitorName),
		MonitorConfig:    monitorConfig,
		httpClient:       httpClient,
		contentExtractor: contentExtractor,
		mentionRepo:      mentionRepo,
		userAgent:        userAgent,
	}
}

func (t *ExtractContentTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !t.MonitorConfig.Settings.ExtractContent {
		slog.Debug("Content extraction disabled for monitor", "monitor", t.MonitorName)
		return nil
	}

	mentions, err := t.mentionRepo.GetMentionsForExtraction(t.MonitorConfig.Owner, t.MonitorConfig.Settings.MaxItems)
	if err != nil {
		return fmt.Errorf("failed to get mentions for content extraction: %w", err)
	}

	if len(mentions) == 0 {
		slog.Debug("No mentions need content extraction", "monitor", t.MonitorName)
		return nil
	}

	successCount := 0
	errorCount := 0

	for _, mention := range mentions {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		extractCtx, cancel := context.WithTimeout(ctx, time.Duration(t.MonitorConfig.Settings.Timeout)*time.Second)

		err := t.extractContentForMention(extractCtx, mention)
		cancel()

		if err != nil {
			slog.Error("Failed to extract content for mention", "mention_id", mention.ID, "url", mention.URL, "error", err)
			errorCount++

			now := time.Now().UTC()
			err = t.mentionRepo.UpdateExtractionStatus(mention.ID, "failed", &now, err.Error())
			if err != nil {
				slog.Error("Failed to update content extraction status", "mention_id", mention.ID, "error", err)
			}
		} else {
			successCount++
		}
	}

	slog.Info("Task completed",
		"type", t.GetType(),
		"monitor", t.MonitorName,
		"duration", t.GetDuration(),
		"success", successCount,
		"errors", errorCount)

	return nil
}

func (t *ExtractContentTask) extractContentForMention(ctx context.Context, mention database.MentionForExtraction) error {
	if mention.URL == "" {
		return fmt.Errorf("mention has no URL")
	}

	data, err := t.fetchArticleContent(ctx, mention.URL)
	if err != nil {
		return fmt.Errorf("failed to fetch article content: %w", err)
	}

	extractedContent, err := t.contentExtractor.Run(data, mention.URL)
	if err != nil {
		return fmt.Errorf("failed to extract content: %w", err)
	}

	now := time.Now().UTC()
	err = t.mentionRepo.UpdateExtractedContent(mention.ID, extractedContent, now)
	if err != nil {
		return fmt.Errorf("failed to update extracted content: %w", err)
	}

	slog.Debug("Content extracted successfully", "mention_id", mention.ID, "url", mention.URL, "content_length", len(extractedContent))
	return nil
}

func (t *ExtractContentTask) fetchArticleContent(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(strings.ToLower(contentType), "text/html") {
		return nil, fmt.Errorf("content type is not HTML: %s", contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
