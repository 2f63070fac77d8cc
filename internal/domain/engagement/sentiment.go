package engagement

import "strings"

// Sentiment is the coarse polarity of a message or conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

var positiveWords = []string{
	"thanks", "thank", "great", "perfect", "awesome", "good", "love",
	"appreciate", "helpful", "nice", "excellent", "happy",
}

var negativeWords = []string{
	"bad", "terrible", "awful", "angry", "frustrated", "annoyed", "useless",
	"horrible", "worst", "unacceptable", "disappointed", "ridiculous",
	"scam", "broken", "never", "ignored",
}

// scoreText classifies one message with the lightweight lexicon: whichever
// polarity has more hits wins, ties are neutral.
func scoreText(text string) Sentiment {
	lowered := strings.ToLower(text)
	positive := countLexiconHits(lowered, positiveWords)
	negative := countLexiconHits(lowered, negativeWords)

	switch {
	case positive > negative:
		return SentimentPositive
	case negative > positive:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

func countLexiconHits(lowered string, lexicon []string) int {
	hits := 0
	for _, word := range lexicon {
		if strings.Contains(lowered, word) {
			hits++
		}
	}
	return hits
}

// majoritySentiment is the majority vote over the given per-message
// sentiments. An empty slice is neutral.
func majoritySentiment(sentiments []Sentiment) Sentiment {
	counts := make(map[Sentiment]int, 3)
	for _, s := range sentiments {
		counts[s]++
	}
	best, bestCount := SentimentNeutral, 0
	for _, s := range []Sentiment{SentimentNegative, SentimentPositive, SentimentNeutral} {
		if counts[s] > bestCount {
			best, bestCount = s, counts[s]
		}
	}
	return best
}
