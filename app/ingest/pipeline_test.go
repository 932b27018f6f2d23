package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/leonardovviana/conecta-monitor/app/classifier"
	"github.com/leonardovviana/conecta-monitor/app/database"
	"github.com/leonardovviana/conecta-monitor/app/feed"
)

type fakeFetcher struct {
	body  []byte
	err   error
	calls int
}

func (f *fakeFetcher) Run(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

type fakeParser struct {
	items []feed.Item
	err   error
}

func (p *fakeParser) Run(_ []byte) ([]feed.Item, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.items, nil
}

// fakeMentionStore keeps (url, userID) pairs in a map, mirroring the
// uniqueness constraint of the mentions table.
type fakeMentionStore struct {
	database.MentionRepository

	rows      map[string]database.NewMention
	existsErr error
	insertErr map[string]error
}

func newFakeMentionStore() *fakeMentionStore {
	return &fakeMentionStore{
		rows:      map[string]database.NewMention{},
		insertErr: map[string]error{},
	}
}

func (s *fakeMentionStore) key(url, userID string) string {
	return url + "|" + userID
}

func (s *fakeMentionStore) MentionExists(url, userID string) (bool, error) {
	if s.existsErr != nil {
		return false, s.existsErr
	}
	_, ok := s.rows[s.key(url, userID)]
	return ok, nil
}

func (s *fakeMentionStore) InsertMention(mention database.NewMention) (bool, error) {
	if err := s.insertErr[mention.URL]; err != nil {
		return false, err
	}

	key := s.key(mention.URL, mention.UserID)
	if _, ok := s.rows[key]; ok {
		return false, nil
	}

	s.rows[key] = mention
	return true, nil
}

func feedItems(count int) []feed.Item {
	items := make([]feed.Item, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, feed.Item{
			Title:       fmt.Sprintf("Notícia %d - G1", i),
			Link:        fmt.Sprintf("https://example.com/noticia-%d", i),
			Description: fmt.Sprintf("Descrição da notícia %d", i),
			Source:      "G1",
			PublishedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		})
	}
	return items
}

func newTestPipeline(fetcher *fakeFetcher, parser *fakeParser, store *fakeMentionStore) *Pipeline {
	return NewPipeline(fetcher, parser, classifier.New(classifier.DefaultRules()), store)
}

func TestPipeline_Run(t *testing.T) {
	store := newFakeMentionStore()
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: feedItems(4)}, store)

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected run to succeed, got error: %v", err)
	}

	if result.Total != 4 || result.Saved != 4 || result.Duplicates != 0 || result.Failed != 0 {
		t.Errorf("Expected 4 saved of 4, got %+v", result)
	}
	if len(store.rows) != 4 {
		t.Errorf("Expected 4 stored mentions, got %d", len(store.rows))
	}
}

func TestPipeline_SecondRunIsIdempotent(t *testing.T) {
	store := newFakeMentionStore()
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: feedItems(4)}, store)

	if _, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews); err != nil {
		t.Fatalf("Expected first run to succeed, got error: %v", err)
	}

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected second run to succeed, got error: %v", err)
	}

	if result.Saved != 0 || result.Duplicates != 4 || result.Failed != 0 {
		t.Errorf("Expected second run to save nothing and count 4 duplicates, got %+v", result)
	}
	if len(store.rows) != 4 {
		t.Errorf("Expected store unchanged after second run, got %d rows", len(store.rows))
	}
}

func TestPipeline_DeduplicationIsPerOwner(t *testing.T) {
	store := newFakeMentionStore()
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: feedItems(2)}, store)

	if _, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews); err != nil {
		t.Fatalf("Expected run for user-1 to succeed, got error: %v", err)
	}

	result, err := pipeline.Run(context.Background(), "prefeito", "user-2", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected run for user-2 to succeed, got error: %v", err)
	}

	if result.Saved != 2 || result.Duplicates != 0 {
		t.Errorf("Expected a different owner to get its own rows, got %+v", result)
	}
	if len(store.rows) != 4 {
		t.Errorf("Expected 4 rows across both owners, got %d", len(store.rows))
	}
}

func TestPipeline_BlankTermRejectedBeforeNetwork(t *testing.T) {
	fetcher := &fakeFetcher{body: []byte("feed")}
	pipeline := newTestPipeline(fetcher, &fakeParser{}, newFakeMentionStore())

	_, err := pipeline.Run(context.Background(), "   ", "user-1", classifier.SourceTypeNews)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected a ValidationError, got %T: %v", err, err)
	}
	if fetcher.calls != 0 {
		t.Errorf("Expected no fetch for a blank term, got %d calls", fetcher.calls)
	}
}

func TestPipeline_BlankOwnerRejected(t *testing.T) {
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{}, newFakeMentionStore())

	_, err := pipeline.Run(context.Background(), "prefeito", "", classifier.SourceTypeNews)

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("Expected a ValidationError, got %T: %v", err, err)
	}
}

func TestPipeline_FetchFailureWrapped(t *testing.T) {
	transportErr := &feed.TransportError{Err: errors.New("connection refused")}
	pipeline := newTestPipeline(&fakeFetcher{err: transportErr}, &fakeParser{}, newFakeMentionStore())

	_, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err == nil {
		t.Fatal("Expected error when fetch fails")
	}

	var unwrapped *feed.TransportError
	if !errors.As(err, &unwrapped) {
		t.Errorf("Expected the TransportError to survive wrapping, got %T: %v", err, err)
	}
}

func TestPipeline_ParseFailureWrapped(t *testing.T) {
	parseErr := &feed.ParseError{Err: errors.New("bad xml")}
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{err: parseErr}, newFakeMentionStore())

	_, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)

	var unwrapped *feed.ParseError
	if !errors.As(err, &unwrapped) {
		t.Errorf("Expected the ParseError to survive wrapping, got %T: %v", err, err)
	}
}

func TestPipeline_PartialInsertFailureDoesNotAbortBatch(t *testing.T) {
	store := newFakeMentionStore()
	store.insertErr["https://example.com/noticia-1"] = errors.New("disk full")

	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: feedItems(3)}, store)

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected per-item failures to not fail the run, got error: %v", err)
	}

	if result.Saved != 2 || result.Failed != 1 {
		t.Errorf("Expected 2 saved and 1 failed, got %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 accumulated error, got %d", len(result.Errors))
	}

	var storageErr *StorageError
	if !errors.As(result.Errors[0], &storageErr) {
		t.Fatalf("Expected a StorageError, got %T", result.Errors[0])
	}
	if storageErr.URL != "https://example.com/noticia-1" {
		t.Errorf("Expected the failing URL on the error, got '%s'", storageErr.URL)
	}
}

func TestPipeline_ExistenceCheckFailureCountsAsFailed(t *testing.T) {
	store := newFakeMentionStore()
	store.existsErr = errors.New("connection reset")

	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: feedItems(2)}, store)

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected per-item failures to not fail the run, got error: %v", err)
	}

	if result.Failed != 2 || result.Saved != 0 {
		t.Errorf("Expected both items to fail on the existence check, got %+v", result)
	}
}

func TestPipeline_EmptyFeed(t *testing.T) {
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: []feed.Item{}}, newFakeMentionStore())

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected empty feed to be a successful run, got error: %v", err)
	}
	if result.Total != 0 || result.Saved != 0 {
		t.Errorf("Expected zero counters for an empty feed, got %+v", result)
	}
}

func TestPipeline_PersistedMentionIsClassified(t *testing.T) {
	items := []feed.Item{{
		Title:       "Denúncia de corrupção atinge prefeitura - G1 Política",
		Link:        "https://example.com/denuncia",
		Description: "Escândalo e crise na gestão municipal",
		Source:      "G1 Política",
		PublishedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}}

	store := newFakeMentionStore()
	pipeline := newTestPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: items}, store)

	if _, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews); err != nil {
		t.Fatalf("Expected run to succeed, got error: %v", err)
	}

	row, ok := store.rows["https://example.com/denuncia|user-1"]
	if !ok {
		t.Fatal("Expected the mention to be stored")
	}
	if row.Title != "Denúncia de corrupção atinge prefeitura" {
		t.Errorf("Expected the source suffix to be stripped, got '%s'", row.Title)
	}
	if row.Sentiment != string(classifier.SentimentNegative) {
		t.Errorf("Expected negative sentiment, got '%s'", row.Sentiment)
	}
	if row.Priority != string(classifier.PriorityHigh) {
		t.Errorf("Expected high priority, got '%s'", row.Priority)
	}
	if row.SourceType != string(classifier.SourceTypeNews) {
		t.Errorf("Expected news source type, got '%s'", row.SourceType)
	}
}

func TestPipeline_LostInsertRaceCountsAsDuplicate(t *testing.T) {
	store := newFakeMentionStore()

	// The row exists but the existence check misses it, as if a concurrent
	// run inserted between the check and the insert.
	items := feedItems(1)
	store.rows[store.key(items[0].Link, "user-1")] = database.NewMention{}
	racingStore := &racingMentionStore{fakeMentionStore: store}

	pipeline := NewPipeline(&fakeFetcher{body: []byte("feed")}, &fakeParser{items: items},
		classifier.New(classifier.DefaultRules()), racingStore)

	result, err := pipeline.Run(context.Background(), "prefeito", "user-1", classifier.SourceTypeNews)
	if err != nil {
		t.Fatalf("Expected run to succeed, got error: %v", err)
	}
	if result.Duplicates != 1 || result.Failed != 0 {
		t.Errorf("Expected a lost race to count as a duplicate, got %+v", result)
	}
}

type racingMentionStore struct {
	*fakeMentionStore
}

func (s *racingMentionStore) MentionExists(_, _ string) (bool, error) {
	return false, nil
}
