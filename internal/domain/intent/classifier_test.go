package intent

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

func TestClassifyPropertySearchWithEntities(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	result := c.Classify("I need a 2 bedroom apartment under $2000", conversation.Context{})

	if result.Label != LabelPropertySearch {
		t.Errorf("expected property_search, got %s", result.Label)
	}
	if result.Confidence <= 0.5 {
		t.Errorf("expected confident match, got %f", result.Confidence)
	}

	bedrooms, ok := result.Entities[EntityBedroomCount].(int)
	if !ok || bedrooms != 2 {
		t.Errorf("expected bedroom_count=2, got %v", result.Entities[EntityBedroomCount])
	}

	budget, ok := result.Entities[EntityBudget].(decimal.Decimal)
	if !ok || !budget.Equal(decimal.NewFromInt(2000)) {
		t.Errorf("expected budget=2000, got %v", result.Entities[EntityBudget])
	}
}

func TestClassifyLabels(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	tests := []struct {
		name string
		text string
		want Label
	}{
		{"maintenance request", "The kitchen sink is leaking again", LabelMaintenanceRequest},
		{"maintenance followup", "Any update on the repair from last week?", LabelMaintenanceFollowup},
		{"application guidance", "How do I apply for this place? What documents do you need?", LabelApplicationGuidance},
		{"scheduling", "Can I book a viewing on Saturday?", LabelScheduling},
		{"pricing", "Is the price firm or can we negotiate?", LabelPricingNegotiation},
		{"greeting", "Hello! Good morning", LabelGreeting},
		{"unmatched", "xyzzy quux frobnicate", LabelGeneralInquiry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := c.Classify(tt.text, conversation.Context{})
			if result.Label != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.text, result.Label, tt.want)
			}
		})
	}
}

func TestConfidenceAlwaysBounded(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	inputs := []string{
		"hello",
		"broken leak leaking repair maintenance fix heating plumbing mold pest",
		"apply application lease paperwork documents guarantor screening references how do i apply sign the lease",
		"I need a 3 bedroom house in riverside under $3500 with parking and a pool",
		"?",
		"thanks thanks thanks thanks thanks",
	}
	for _, text := range inputs {
		result := c.Classify(text, conversation.Context{})
		if result.Confidence < 0 || result.Confidence > 1 {
			t.Errorf("Classify(%q) confidence %f out of [0,1]", text, result.Confidence)
		}
	}
}

func TestNoMatchFallsBackToGeneralInquiry(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	result := c.Classify("what is the meaning of all this", conversation.Context{})
	if result.Label != LabelGeneralInquiry {
		t.Fatalf("expected general_inquiry, got %s", result.Label)
	}
	if result.Confidence != 0.3 {
		t.Errorf("expected fallback confidence 0.3, got %f", result.Confidence)
	}
}

func TestEntityExtractionIndependentOfIntent(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	// No search keywords, but a budget figure is still extracted.
	result := c.Classify("hmm, $1500 sounds about right to me", conversation.Context{})
	if result.Label != LabelGeneralInquiry {
		t.Fatalf("expected general_inquiry, got %s", result.Label)
	}
	budget, ok := result.Entities[EntityBudget].(decimal.Decimal)
	if !ok || !budget.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("expected budget 1500 under general_inquiry, got %v", result.Entities[EntityBudget])
	}
}

func TestAmenityAndLocationExtraction(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	result := c.Classify("Looking for a furnished flat in riverside with parking", conversation.Context{})

	amenities, ok := result.Entities[EntityAmenities].([]string)
	if !ok || len(amenities) < 2 {
		t.Fatalf("expected furnished and parking amenities, got %v", result.Entities[EntityAmenities])
	}
	location, ok := result.Entities[EntityLocation].(string)
	if !ok || location != "riverside" {
		t.Errorf("expected location riverside, got %v", result.Entities[EntityLocation])
	}
}

func TestAnchoredListingRefinesSearchToInquiry(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	ctx := conversation.Context{Listing: &conversation.Listing{PublicID: "lst_1"}}
	result := c.Classify("Is this still available to rent?", ctx)
	if result.Label != LabelPropertyInquiry {
		t.Errorf("expected property_inquiry with anchored listing, got %s", result.Label)
	}
}

func TestStudioMapsToZeroBedrooms(t *testing.T) {
	c := NewClassifier(zerolog.Nop())

	result := c.Classify("Looking for a studio downtown", conversation.Context{})
	bedrooms, ok := result.Entities[EntityBedroomCount].(int)
	if !ok || bedrooms != 0 {
		t.Errorf("expected bedroom_count=0 for studio, got %v", result.Entities[EntityBedroomCount])
	}
}
