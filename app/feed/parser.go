package feed

import (
	"bytes"
	"cmp"
	"time"

	"github.com/mmcdole/gofeed/rss"
)

const defaultSourceLabel = "Google News"

// Parser converts a raw RSS body into an ordered slice of items. The RSS
// parser is used directly instead of gofeed's universal one because the
// provider's <source> element is dropped by the universal translator.
type Parser struct {
	rssParser *rss.Parser
}

func NewParser() *Parser {
	return &Parser{
		rssParser: &rss.Parser{},
	}
}

// Run parses the feed body. Item order follows the provider. Missing fields
// on an item default to empty strings; a single sparse item never drops the
// rest of the feed. An item-less feed yields an empty slice, not an error.
func (p *Parser) Run(data []byte) ([]Item, error) {
	parsed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Err: err}
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		items = append(items, p.normalizeItem(item))
	}

	return items, nil
}

func (p *Parser) normalizeItem(item *rss.Item) Item {
	normalized := Item{
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Source:      defaultSourceLabel,
	}

	if item.Source != nil {
		normalized.Source = cmp.Or(item.Source.Title, defaultSourceLabel)
	}

	if item.PubDateParsed != nil {
		normalized.PublishedAt = item.PubDateParsed.UTC()
	} else {
		normalized.PublishedAt = time.Now().UTC()
	}

	return normalized
}
