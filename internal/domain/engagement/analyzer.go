package engagement

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
)

// Reason is one triggered handoff indicator.
type Reason string

const (
	ReasonLowBotConfidence Reason = "low_bot_confidence"
	ReasonNegativeTrend    Reason = "negative_sentiment"
	ReasonRepetitive       Reason = "repetitive_conversation"
	ReasonComplexQueries   Reason = "complex_queries"
)

// HandoffSignal is the derived human-handoff decision. Recomputed on demand
// from the recent message window; never persisted.
type HandoffSignal struct {
	Reasons       []Reason `json:"reasons"`
	Score         float64  `json:"score"`
	ShouldHandoff bool     `json:"should_handoff"`
}

// Config carries the hand-tuned indicator thresholds and weights. These are
// operational knobs surfaced through service configuration.
type Config struct {
	LowConfidenceCutoff     float64
	RepetitionRatio         float64
	RepetitionWindow        time.Duration
	WeightLowConfidence     float64
	WeightNegativeSentiment float64
	WeightRepetitive        float64
	WeightComplex           float64
	Window                  int
}

// DefaultConfig mirrors the production defaults.
func DefaultConfig() Config {
	return Config{
		LowConfidenceCutoff:     0.5,
		RepetitionRatio:         0.5,
		RepetitionWindow:        30 * time.Minute,
		WeightLowConfidence:     0.4,
		WeightNegativeSentiment: 0.3,
		WeightRepetitive:        0.2,
		WeightComplex:           0.5,
		Window:                  20,
	}
}

// Legal/urgency keywords that mark a conversation as too sensitive for the
// assistant to keep handling alone.
var complexityKeywords = []string{
	"lawsuit", "eviction", "evicted", "emergency", "illegal", "lawyer",
	"attorney", "court", "sue", "discrimination", "harassment", "unsafe",
	"gas leak", "flooding", "fire",
}

// Analyzer computes conversation-level engagement signals. It is a pure
// read-side computation over persisted history: no mutation, safe to call
// repeatedly.
type Analyzer struct {
	repo conversation.Repository
	cfg  Config
	log  zerolog.Logger
}

// NewAnalyzer wires the analyzer against the conversation store.
func NewAnalyzer(repo conversation.Repository, cfg Config, log zerolog.Logger) *Analyzer {
	if cfg.Window <= 0 {
		cfg.Window = 20
	}
	return &Analyzer{
		repo: repo,
		cfg:  cfg,
		log:  log.With().Str("component", "engagement-analyzer").Logger(),
	}
}

// HandoffSignal derives the current handoff decision for the conversation.
// should_handoff is true whenever any indicator triggered; the score is the
// weight sum capped at 1.0.
func (a *Analyzer) HandoffSignal(ctx context.Context, conv *conversation.Conversation) (HandoffSignal, error) {
	messages, err := a.repo.RecentMessages(ctx, conv.PublicID, a.cfg.Window)
	if err != nil {
		return HandoffSignal{}, fmt.Errorf("load messages for handoff %s: %w", conv.PublicID, err)
	}

	var reasons []Reason
	score := 0.0

	if a.lowBotConfidence(messages) {
		reasons = append(reasons, ReasonLowBotConfidence)
		score += a.cfg.WeightLowConfidence
	}
	if a.sentimentOf(messages) == SentimentNegative {
		reasons = append(reasons, ReasonNegativeTrend)
		score += a.cfg.WeightNegativeSentiment
	}
	if a.repetitive(messages) {
		reasons = append(reasons, ReasonRepetitive)
		score += a.cfg.WeightRepetitive
	}
	if a.complexQueries(messages) {
		reasons = append(reasons, ReasonComplexQueries)
		score += a.cfg.WeightComplex
	}

	if score > 1.0 {
		score = 1.0
	}

	for _, reason := range reasons {
		metrics.HandoffFlagsTotal.WithLabelValues(string(reason)).Inc()
	}

	signal := HandoffSignal{
		Reasons:       reasons,
		Score:         score,
		ShouldHandoff: len(reasons) > 0,
	}

	if signal.ShouldHandoff {
		a.log.Info().
			Str("conversation_id", conv.PublicID).
			Float64("score", signal.Score).
			Interface("reasons", signal.Reasons).
			Msg("handoff recommended")
	}

	return signal, nil
}

// SentimentTrend is the majority sentiment over human messages in the recent
// window. Assistant messages are excluded from the vote.
func (a *Analyzer) SentimentTrend(ctx context.Context, conv *conversation.Conversation) (Sentiment, error) {
	messages, err := a.repo.RecentMessages(ctx, conv.PublicID, a.cfg.Window)
	if err != nil {
		return SentimentNeutral, fmt.Errorf("load messages for sentiment %s: %w", conv.PublicID, err)
	}
	return a.sentimentOf(messages), nil
}

// EngagementScore estimates how actively the human participates: the human
// share of recent messages, decayed when the last human message is stale.
func (a *Analyzer) EngagementScore(ctx context.Context, conv *conversation.Conversation) (float64, error) {
	messages, err := a.repo.RecentMessages(ctx, conv.PublicID, a.cfg.Window)
	if err != nil {
		return 0, fmt.Errorf("load messages for engagement %s: %w", conv.PublicID, err)
	}
	if len(messages) == 0 {
		return 0, nil
	}

	humanCount := 0
	var lastHuman time.Time
	for _, msg := range messages {
		if msg.SenderRole == conversation.RoleUser {
			humanCount++
			if msg.CreatedAt.After(lastHuman) {
				lastHuman = msg.CreatedAt
			}
		}
	}

	score := float64(humanCount) / float64(len(messages))
	if !lastHuman.IsZero() && time.Since(lastHuman) > 24*time.Hour {
		score *= 0.5
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, nil
}

func (a *Analyzer) sentimentOf(messages []conversation.Message) Sentiment {
	var sentiments []Sentiment
	for _, msg := range messages {
		if msg.SenderRole != conversation.RoleUser {
			continue
		}
		sentiments = append(sentiments, scoreText(msg.Content))
	}
	return majoritySentiment(sentiments)
}

// lowBotConfidence triggers when at least 2 of the last 3 assistant replies
// carried a classifier confidence below the cutoff.
func (a *Analyzer) lowBotConfidence(messages []conversation.Message) bool {
	low, seen := 0, 0
	for i := len(messages) - 1; i >= 0 && seen < 3; i-- {
		msg := messages[i]
		if msg.SenderRole != conversation.RoleAssistant {
			continue
		}
		seen++
		if confidence, ok := confidenceFrom(msg.Metadata); ok && confidence < a.cfg.LowConfidenceCutoff {
			low++
		}
	}
	return low >= 2
}

// repetitive computes 1 - unique/count over human messages inside the recent
// time window.
func (a *Analyzer) repetitive(messages []conversation.Message) bool {
	cutoff := time.Now().Add(-a.cfg.RepetitionWindow)

	unique := make(map[string]bool)
	count := 0
	for _, msg := range messages {
		if msg.SenderRole != conversation.RoleUser || msg.CreatedAt.Before(cutoff) {
			continue
		}
		count++
		unique[strings.ToLower(strings.TrimSpace(msg.Content))] = true
	}
	if count < 2 {
		return false
	}
	ratio := 1.0 - float64(len(unique))/float64(count)
	return ratio > a.cfg.RepetitionRatio
}

func (a *Analyzer) complexQueries(messages []conversation.Message) bool {
	for _, msg := range messages {
		if msg.SenderRole != conversation.RoleUser {
			continue
		}
		lowered := strings.ToLower(msg.Content)
		for _, keyword := range complexityKeywords {
			if strings.Contains(lowered, keyword) {
				return true
			}
		}
	}
	return false
}

func confidenceFrom(metadata map[string]any) (float64, bool) {
	if metadata == nil {
		return 0, false
	}
	switch v := metadata["confidence"].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
