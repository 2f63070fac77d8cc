package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// fallbackConfidence is emitted when no pattern set matches.
const fallbackConfidence = 0.3

// rule is one (pattern set, label) pair checked in priority order. keywords
// are matched as whole words against the lowercased message; base is the
// confidence for a single keyword hit, perExtra the increment for each
// additional hit.
type rule struct {
	label    Label
	keywords []string
	phrases  []string
	base     float64
	perExtra float64
}

// Classifier maps raw text to a labeled intent with confidence and extracted
// entities. Rule-based for speed and determinism; it is a pure function of
// text and context with no side effects.
type Classifier struct {
	rules []rule
	log   zerolog.Logger
}

// NewClassifier builds the classifier with the fixed rule table.
func NewClassifier(log zerolog.Logger) *Classifier {
	return &Classifier{
		rules: []rule{
			{
				label:    LabelMaintenanceFollowup,
				phrases:  []string{"status of my repair", "any update on the repair", "maintenance update", "repair update", "still not fixed", "when will it be fixed"},
				keywords: []string{"followup"},
				base:     0.75,
				perExtra: 0.1,
			},
			{
				label:    LabelMaintenanceRequest,
				keywords: []string{"broken", "leak", "leaking", "repair", "maintenance", "fix", "heating", "plumbing", "mold", "pest", "cockroach"},
				base:     0.65,
				perExtra: 0.1,
			},
			{
				label:    LabelApplicationGuidance,
				keywords: []string{"apply", "application", "lease", "paperwork", "documents", "guarantor", "screening", "references"},
				phrases:  []string{"how do i apply", "sign the lease"},
				base:     0.65,
				perExtra: 0.1,
			},
			{
				label:    LabelScheduling,
				keywords: []string{"viewing", "tour", "visit", "appointment", "reschedule", "showing"},
				phrases:  []string{"see the place", "come by", "stop by"},
				base:     0.6,
				perExtra: 0.1,
			},
			{
				label:    LabelPricingNegotiation,
				keywords: []string{"negotiate", "discount", "lower", "deposit", "utilities"},
				phrases:  []string{"price is too high", "rent reduction", "is the price firm"},
				base:     0.6,
				perExtra: 0.1,
			},
			{
				label:    LabelPropertySearch,
				keywords: []string{"looking", "searching", "apartment", "flat", "studio", "house", "condo", "rent", "available"},
				phrases:  []string{"i need a", "do you have any", "show me"},
				base:     0.55,
				perExtra: 0.08,
			},
			{
				label:    LabelPropertyInquiry,
				keywords: []string{"listing", "property", "unit", "square", "sqft", "floor", "furnished", "pets", "parking"},
				phrases:  []string{"is it still available", "about this place", "about the listing"},
				base:     0.55,
				perExtra: 0.08,
			},
			{
				label:    LabelGreeting,
				keywords: []string{"hello", "hi", "hey", "thanks", "thank"},
				phrases:  []string{"good morning", "good afternoon", "good evening"},
				base:     0.5,
				perExtra: 0.15,
			},
		},
		log: log.With().Str("component", "intent-classifier").Logger(),
	}
}

// Classify maps text to an intent result. The caller guarantees text is
// non-blank; blank input is rejected upstream.
func (c *Classifier) Classify(text string, convCtx conversation.Context) Result {
	lowered := strings.ToLower(text)

	result := Result{
		Label:      LabelGeneralInquiry,
		Confidence: fallbackConfidence,
		Entities:   extractEntities(lowered),
	}

	for _, r := range c.rules {
		hits := countHits(lowered, r)
		if hits == 0 {
			continue
		}
		confidence := clamp01(r.base + float64(hits-1)*r.perExtra)
		result.Label = r.label
		result.Confidence = confidence
		break
	}

	// An anchored listing makes a bare availability question an inquiry
	// about that listing rather than a fresh search.
	if result.Label == LabelPropertySearch && convCtx.Listing != nil && !result.HasEntity(EntityBedroomCount) && !result.HasEntity(EntityBudget) {
		result.Label = LabelPropertyInquiry
	}

	c.log.Debug().
		Str("label", string(result.Label)).
		Float64("confidence", result.Confidence).
		Int("entities", len(result.Entities)).
		Msg("classified message")

	return result
}

func countHits(lowered string, r rule) int {
	hits := 0
	for _, phrase := range r.phrases {
		if strings.Contains(lowered, phrase) {
			hits += 2 // phrases are more specific than single keywords
		}
	}
	for _, kw := range r.keywords {
		if containsWord(lowered, kw) {
			hits++
		}
	}
	return hits
}

func containsWord(haystack, word string) bool {
	idx := 0
	for {
		pos := strings.Index(haystack[idx:], word)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(word)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
		if idx >= len(haystack) {
			return false
		}
	}
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

var (
	bedroomPattern = regexp.MustCompile(`(\d+)\s*(?:bed(?:room)?s?|br\b)`)
	// Currency-prefixed figures plus "under/below/max/up to N" forms.
	budgetPattern    = regexp.MustCompile(`(?:\$|usd\s?)(\d{3,6}(?:,\d{3})*)(?:\.\d+)?`)
	budgetCapPattern = regexp.MustCompile(`(?:under|below|max(?:imum)?|up to|budget(?: of| is)?)\s*\$?(\d{3,6}(?:,\d{3})*)`)
	locationPattern  = regexp.MustCompile(`\b(?:in|near|around|close to)\s+([a-z][a-z\s]{2,30}?)(?:[.,!?]|$| with| under| below| for )`)
)

var amenityKeywords = []string{
	"parking", "pool", "gym", "balcony", "laundry", "dishwasher",
	"furnished", "pet-friendly", "pets allowed", "garden", "elevator",
	"air conditioning",
}

// extractEntities runs independently of the winning intent: a budget figure
// is extracted even under a general_inquiry label.
func extractEntities(lowered string) map[string]any {
	entities := make(map[string]any)

	if m := bedroomPattern.FindStringSubmatch(lowered); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 && n < 20 {
			entities[EntityBedroomCount] = n
		}
	}
	if containsWord(lowered, "studio") {
		if _, ok := entities[EntityBedroomCount]; !ok {
			entities[EntityBedroomCount] = 0
		}
	}

	budget := ""
	if m := budgetCapPattern.FindStringSubmatch(lowered); m != nil {
		budget = m[1]
	} else if m := budgetPattern.FindStringSubmatch(lowered); m != nil {
		budget = m[1]
	}
	if budget != "" {
		cleaned := strings.ReplaceAll(budget, ",", "")
		if value, err := decimal.NewFromString(cleaned); err == nil && value.IsPositive() {
			entities[EntityBudget] = value
		}
	}

	if m := locationPattern.FindStringSubmatch(lowered); m != nil {
		location := strings.TrimSpace(m[1])
		if location != "" && !isStopLocation(location) {
			entities[EntityLocation] = location
		}
	}

	var amenities []string
	for _, amenity := range amenityKeywords {
		if strings.Contains(lowered, amenity) {
			amenities = append(amenities, amenity)
		}
	}
	if len(amenities) > 0 {
		entities[EntityAmenities] = amenities
	}

	return entities
}

// isStopLocation filters captures that are grammar, not places.
func isStopLocation(s string) bool {
	switch s {
	case "the area", "town", "general", "that case", "a hurry", "touch":
		return true
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
