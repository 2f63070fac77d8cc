package generation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

func TestBuildPromptIncludesListingAndPreferences(t *testing.T) {
	convCtx := conversation.Context{
		Listing: &conversation.Listing{
			Title:     "Sunny 2BR",
			Location:  "Maplewood",
			Price:     decimal.NewFromInt(1850),
			Bedrooms:  2,
			Bathrooms: 1,
			Amenities: []string{"parking"},
		},
		Profile: conversation.UserProfile{
			Role:        "tenant",
			Preferences: map[string]string{"pets": "one cat", "move_in": "June"},
		},
	}

	prompt := BuildPrompt(convCtx, "is parking included?", 6000)

	for _, want := range []string{"Sunny 2BR", "Maplewood", "$1850", "tenant", "pets: one cat", "move_in: June"} {
		if !strings.Contains(prompt.System, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
	if prompt.Query != "is parking included?" {
		t.Errorf("query not carried: %q", prompt.Query)
	}
}

func TestBuildPromptBoundsHistory(t *testing.T) {
	var turns []conversation.Turn
	for i := 0; i < 50; i++ {
		turns = append(turns, conversation.Turn{
			Role:      conversation.RoleUser,
			Text:      strings.Repeat("x", 200),
			Timestamp: time.Now(),
		})
	}

	prompt := BuildPrompt(conversation.Context{Turns: turns}, "short query", 2000)

	total := len(prompt.System) + len(prompt.Query)
	for _, turn := range prompt.Turns {
		total += len(turn.Text)
	}
	if total > 2000 {
		t.Errorf("prompt exceeds budget: %d chars", total)
	}
	if len(prompt.Turns) == 0 {
		t.Error("expected at least one history turn within budget")
	}
	// Newest turns are kept.
	if prompt.Turns[len(prompt.Turns)-1].Text != turns[len(turns)-1].Text {
		t.Error("bounded history dropped the newest turn")
	}
}

func TestBuildPromptEmptyContext(t *testing.T) {
	prompt := BuildPrompt(conversation.Context{}, "first contact", 6000)
	if prompt.System == "" {
		t.Error("system instructions must always be present")
	}
	if len(prompt.Turns) != 0 {
		t.Error("no turns expected for first contact")
	}
}
