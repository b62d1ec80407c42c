package narrative

import (
	"context"

	"github.com/dyike/CoinCortex/internal/logger"
)

// NewsUnavailable replaces the sentiment when the lookup fails.
const NewsUnavailable = "News sentiment could not be retrieved."

// NewsSentiment asks n for recent headlines about name. Failures are logged
// and reported through ok so the analysis can continue without them.
func NewsSentiment(ctx context.Context, n Narrator, b *PromptBuilder, name string) (text string, ok bool) {
	msgs, err := b.News(ctx, name)
	if err != nil {
		logger.Warnf("news: %v", err)
		return NewsUnavailable, false
	}
	text, err = n.Generate(ctx, Request{Messages: msgs, Search: true})
	if err != nil {
		logger.Warnf("could not fetch news sentiment, proceeding without it: %v", err)
		return NewsUnavailable, false
	}
	return text, true
}
