package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
)

// Pipeline runs one ingestion pass: fetch the provider feed for a term,
// parse it, classify every item, and persist the ones not already stored
// for the owner. Runs are sequential per item; there is no parallelism
// inside a run.
type Pipeline struct {
	fetcher     FetcherInterface
	parser      ParserInterface
	classifier  *classifier.Classifier
	mentionRepo database.MentionRepository
}

func NewPipeline(fetcher FetcherInterface, parser ParserInterface,
	cls *classifier.Classifier, mentionRepo database.MentionRepository) *Pipeline {
	return &Pipeline{
		fetcher:     fetcher,
		parser:      parser,
		classifier:  cls,
		mentionRepo: mentionRepo,
	}
}

// Run ingests mentions for one (term, owner) pair. A whole-run failure
// (validation, fetch, parse) is returned as an error and leaves stored
// state untouched. Per-item storage failures do not abort the batch; they
// are accumulated on the result.
func (p *Pipeline) Run(ctx context.Context, term, userID string, sourceType classifier.SourceType) (*Result, error) {
	if strings.TrimSpace(term) == "" {
		return nil, &ValidationError{Msg: "search term is required"}
	}
	if strings.TrimSpace(userID) == "" {
		return nil, &ValidationError{Msg: "owner identifier is required"}
	}

	data, err := p.fetcher.Run(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("fetch stage: %w", err)
	}

	items, err := p.parser.Run(data)
	if err != nil {
		return nil, fmt.Errorf("parse stage: %w", err)
	}

	mentions := lo.Map(items, func(item feed.Item, _ int) classifier.Mention {
		return p.classifier.Run(item, sourceType)
	})

	result := &Result{Total: len(mentions)}

	for _, mention := range mentions {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		exists, err := p.mentionRepo.MentionExists(mention.URL, userID)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, &StorageError{URL: mention.URL, Err: err})
			continue
		}
		if exists {
			result.Duplicates++
			continue
		}

		inserted, err := p.mentionRepo.InsertMention(database.NewMention{
			Title:       mention.Title,
			Source:      mention.Source,
			SourceType:  string(mention.SourceType),
			Sentiment:   string(mention.Sentiment),
			Priority:    string(mention.Priority),
			Excerpt:     mention.Excerpt,
			URL:         mention.URL,
			UserID:      userID,
			PublishedAt: mention.PublishedAt,
		})
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, &StorageError{URL: mention.URL, Err: err})
			continue
		}

		if inserted {
			result.Saved++
		} else {
			// Lost the race against a concurrent run; the row is there.
			result.Duplicates++
		}
	}

	return result, nil
}
