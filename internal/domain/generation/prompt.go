package generation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

const systemPersona = "You are the HomeMatch rental assistant. You help tenants and landlords " +
	"with listings, applications, maintenance and viewings. Answer in a friendly, " +
	"concise tone using only the context provided. If you do not know something, " +
	"suggest contacting the landlord or support team instead of guessing."

// BuildPrompt assembles the bounded provider input: system instructions,
// subject listing summary, preference summary, recent history and the current
// query. Total input is capped at maxChars; when the budget is tight the
// oldest history turns are dropped first.
func BuildPrompt(convCtx conversation.Context, query string, maxChars int) Prompt {
	if maxChars <= 0 {
		maxChars = 6000
	}

	var system strings.Builder
	system.WriteString(systemPersona)

	if convCtx.Profile.Role != "" {
		fmt.Fprintf(&system, "\n\nYou are talking to a %s.", convCtx.Profile.Role)
	}

	if convCtx.Listing != nil {
		system.WriteString("\n\nListing under discussion:\n")
		system.WriteString(listingSummary(convCtx.Listing))
	}

	if len(convCtx.Profile.Preferences) > 0 {
		system.WriteString("\n\nStored preferences:\n")
		system.WriteString(preferenceSummary(convCtx.Profile.Preferences))
	}

	budget := maxChars - system.Len() - len(query)
	turns := boundedHistory(convCtx.Turns, budget)

	return Prompt{
		System: system.String(),
		Turns:  turns,
		Query:  query,
	}
}

func listingSummary(listing *conversation.Listing) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- %s in %s\n", listing.Title, listing.Location)
	fmt.Fprintf(&b, "- %d bedroom(s), %d bathroom(s), $%s/month\n",
		listing.Bedrooms, listing.Bathrooms, listing.Price.StringFixed(0))
	if len(listing.Amenities) > 0 {
		fmt.Fprintf(&b, "- Amenities: %s", strings.Join(listing.Amenities, ", "))
	}
	return b.String()
}

func preferenceSummary(prefs map[string]string) string {
	// Deterministic order keeps cache keys and tests stable.
	keys := make([]string, 0, len(prefs))
	for k := range prefs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, prefs[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// boundedHistory keeps the newest turns that fit the character budget,
// preserving oldest-to-newest order.
func boundedHistory(turns []conversation.Turn, budget int) []conversation.Turn {
	if budget <= 0 || len(turns) == 0 {
		return nil
	}

	used := 0
	start := len(turns)
	for i := len(turns) - 1; i >= 0; i-- {
		cost := len(turns[i].Text) + 16 // role framing overhead
		if used+cost > budget {
			break
		}
		used += cost
		start = i
	}
	if start == len(turns) {
		return nil
	}
	return turns[start:]
}
