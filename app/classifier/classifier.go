package classifier

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/leonardovviana/conecta-monitor/app/feed"
)

const excerptLength = 150

// Classifier assigns a sentiment and a priority label to feed items using
// keyword-presence heuristics. It is a pure function of its rule table:
// classification never fails, it degrades to neutral/medium when no keyword
// matches.
type Classifier struct {
	rules Rules
}

func New(rules Rules) *Classifier {
	return &Classifier{rules: rules}
}

func (c *Classifier) Run(item feed.Item, sourceType SourceType) Mention {
	searchText := strings.ToLower(item.Title + " " + item.Description)

	sentiment := c.classifySentiment(searchText)
	priority := c.classifyPriority(searchText, sentiment)

	return Mention{
		Title:       stripSourceSuffix(item.Title),
		Source:      item.Source,
		SourceType:  sourceType,
		PublishedAt: item.PublishedAt,
		Sentiment:   sentiment,
		Priority:    priority,
		Excerpt:     buildExcerpt(item.Description),
		URL:         item.Link,
	}
}

// classifySentiment counts distinct keywords present in the text (not total
// occurrences) for each label. A tie, including zero matches on both sides,
// is neutral.
func (c *Classifier) classifySentiment(searchText string) Sentiment {
	positiveCount := countMatches(searchText, c.rules.Positive)
	negativeCount := countMatches(searchText, c.rules.Negative)

	switch {
	case positiveCount > negativeCount:
		return SentimentPositive
	case negativeCount > positiveCount:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// classifyPriority maps sentiment to priority, except that the presence of
// any urgent keyword overrides the sentiment-derived value.
func (c *Classifier) classifyPriority(searchText string, sentiment Sentiment) Priority {
	if countMatches(searchText, c.rules.Urgent) > 0 {
		return PriorityUrgent
	}

	switch sentiment {
	case SentimentNegative:
		return PriorityHigh
	case SentimentPositive:
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Keyword matching is deliberately substring-based, not tokenized; changing
// it would reclassify existing stored content.
func countMatches(searchText string, keywords []string) int {
	return lo.CountBy(keywords, func(keyword string) bool {
		return strings.Contains(searchText, strings.ToLower(keyword))
	})
}

// stripSourceSuffix removes the trailing " - <source>" attribution the
// provider appends to titles. Only the last such suffix is stripped, so
// hyphens inside the headline itself survive.
func stripSourceSuffix(title string) string {
	if idx := strings.LastIndex(title, " - "); idx != -1 {
		return title[:idx]
	}
	return title
}

// buildExcerpt strips HTML tags from the description and bounds it to
// excerptLength runes. The ellipsis marker is appended whether or not
// truncation happened, matching excerpts already stored by earlier versions.
func buildExcerpt(descriptionHTML string) string {
	text := stripHTML(descriptionHTML)

	runes := []rune(text)
	if len(runes) > excerptLength {
		runes = runes[:excerptLength]
	}

	return string(runes) + "..."
}

func stripHTML(s string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}
