package classifier

import (
	"strings"
	"testing"
	"time"

	"github.com/leonardovviana/conecta-monitor/app/feed"
)

func newTestItem(title, description string) feed.Item {
	return feed.Item{
		Title:       title,
		Link:        "https://example.com/article",
		Description: description,
		Source:      "G1 Política",
		PublishedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestClassifier_NeutralDefaults(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Prefeito participa de evento", "Agenda da semana na capital"), SourceTypeNews)

	if mention.Sentiment != SentimentNeutral {
		t.Errorf("Expected neutral sentiment for text without keywords, got %s", mention.Sentiment)
	}
	if mention.Priority != PriorityMedium {
		t.Errorf("Expected medium priority for text without keywords, got %s", mention.Priority)
	}
}

func TestClassifier_NegativeHighPriority(t *testing.T) {
	c := New(DefaultRules())

	// "denúncia" and "crise" are negative keywords; no urgent keyword present
	mention := c.Run(newTestItem("Denúncia atinge secretaria", "Nova crise na gestão municipal"), SourceTypeNews)

	if mention.Sentiment != SentimentNegative {
		t.Errorf("Expected negative sentiment, got %s", mention.Sentiment)
	}
	if mention.Priority != PriorityHigh {
		t.Errorf("Expected high priority for negative sentiment, got %s", mention.Priority)
	}
}

func TestClassifier_PositiveLowPriority(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Cidade conquista prêmio", "Reconhecimento pelo sucesso do programa"), SourceTypeNews)

	if mention.Sentiment != SentimentPositive {
		t.Errorf("Expected positive sentiment, got %s", mention.Sentiment)
	}
	if mention.Priority != PriorityLow {
		t.Errorf("Expected low priority for positive sentiment, got %s", mention.Priority)
	}
}

func TestClassifier_UrgentOverridesSentiment(t *testing.T) {
	c := New(DefaultRules())

	// "emergência" is urgent; positive keywords present alongside
	mention := c.Run(newTestItem("Prefeitura inaugura centro de emergência", "Avanço para a saúde da cidade"), SourceTypeNews)

	if mention.Priority != PriorityUrgent {
		t.Errorf("Expected urgent priority to override sentiment mapping, got %s", mention.Priority)
	}
}

func TestClassifier_TieIsNeutral(t *testing.T) {
	c := New(DefaultRules())

	// one positive ("aprova") and one negative ("atraso") keyword
	mention := c.Run(newTestItem("Câmara aprova obra após atraso", ""), SourceTypeNews)

	if mention.Sentiment != SentimentNeutral {
		t.Errorf("Expected neutral sentiment on tie, got %s", mention.Sentiment)
	}
	if mention.Priority != PriorityMedium {
		t.Errorf("Expected medium priority on tie, got %s", mention.Priority)
	}
}

func TestClassifier_DistinctKeywordCount(t *testing.T) {
	c := New(DefaultRules())

	// "crise" repeated three times still counts once; two distinct positive
	// keywords outweigh it
	mention := c.Run(newTestItem("Crise, crise e mais crise", "Parceria traz melhoria apesar da crise"), SourceTypeNews)

	if mention.Sentiment != SentimentPositive {
		t.Errorf("Expected positive sentiment when distinct positive keywords outnumber negatives, got %s", mention.Sentiment)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := New(DefaultRules())
	item := newTestItem("Protesto contra atraso em obra - Folha", "Moradores criticam <b>falha</b> na entrega")

	first := c.Run(item, SourceTypeNews)
	for i := 0; i < 10; i++ {
		next := c.Run(item, SourceTypeNews)
		if next != first {
			t.Fatalf("Classification is not deterministic: %+v != %+v", next, first)
		}
	}
}

func TestClassifier_TitleSourceSuffixStripped(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Prefeito inaugura praça - G1 Política", ""), SourceTypeNews)

	if mention.Title != "Prefeito inaugura praça" {
		t.Errorf("Expected source suffix stripped, got '%s'", mention.Title)
	}
}

func TestClassifier_TitleLastSuffixOnly(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Obra norte - sul avança - G1", ""), SourceTypeNews)

	if mention.Title != "Obra norte - sul avança" {
		t.Errorf("Expected only the last suffix stripped, got '%s'", mention.Title)
	}
}

func TestClassifier_TitleWithoutSuffixUnchanged(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Prefeito visita escola", ""), SourceTypeNews)

	if mention.Title != "Prefeito visita escola" {
		t.Errorf("Expected title unchanged, got '%s'", mention.Title)
	}
}

func TestClassifier_ExcerptStripsHTMLAndBounds(t *testing.T) {
	c := New(DefaultRules())

	longDescription := "<p>" + strings.Repeat("palavra bem longa ", 40) + "</p>"

	mention := c.Run(newTestItem("Título", longDescription), SourceTypeNews)

	runes := []rune(mention.Excerpt)
	if len(runes) > 153 {
		t.Errorf("Expected excerpt of at most 153 characters, got %d", len(runes))
	}
	if mention.Excerpt[len(mention.Excerpt)-3:] != "..." {
		t.Errorf("Expected excerpt to end with ellipsis marker, got '%s'", mention.Excerpt)
	}
	for _, r := range mention.Excerpt {
		if r == '<' || r == '>' {
			t.Errorf("Expected HTML tags removed from excerpt, got '%s'", mention.Excerpt)
			break
		}
	}
}

func TestClassifier_ShortExcerptStillGetsEllipsis(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Título", "<b>curto</b>"), SourceTypeNews)

	if mention.Excerpt != "curto..." {
		t.Errorf("Expected 'curto...', got '%s'", mention.Excerpt)
	}
}

func TestClassifier_SourceTypePassedThrough(t *testing.T) {
	c := New(DefaultRules())

	mention := c.Run(newTestItem("Título", ""), SourceTypeVideo)

	if mention.SourceType != SourceTypeVideo {
		t.Errorf("Expected source type to come from the caller, got %s", mention.SourceType)
	}
}

func TestClassifier_SubstringMatching(t *testing.T) {
	// matching is substring-based: "crime" inside another word still counts
	c := New(Rules{Urgent: []string{"crime"}})

	mention := c.Run(newTestItem("Relatório criticava o crescimento", "discrimes"), SourceTypeNews)

	if mention.Priority != PriorityUrgent {
		t.Errorf("Expected substring match inside a longer word, got priority %s", mention.Priority)
	}
}

func TestClassifier_SyntheticRules(t *testing.T) {
	c := New(Rules{
		Positive: []string{"sunshine"},
		Negative: []string{"rain"},
		Urgent:   []string{"storm"},
	})

	mention := c.Run(newTestItem("Heavy rain expected", "more rain tomorrow"), SourceTypeNews)
	if mention.Sentiment != SentimentNegative {
		t.Errorf("Expected negative sentiment with synthetic rules, got %s", mention.Sentiment)
	}

	mention = c.Run(newTestItem("Storm warning with sunshine later", ""), SourceTypeNews)
	if mention.Priority != PriorityUrgent {
		t.Errorf("Expected urgent priority with synthetic rules, got %s", mention.Priority)
	}
}
