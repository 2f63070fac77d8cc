package generation

import (
	"fmt"
	"strings"
)

// Known low-quality disclaimer phrases. A provider reply containing any of
// these is rejected and the chain advances to the next provider.
var disclaimerPhrases = []string{
	"as an ai",
	"as a language model",
	"i cannot",
	"i can't assist",
	"i don't have access",
	"i do not have access",
}

// validateReply checks a provider reply against the quality gates. Only
// provider output passes through here; fallback text is trusted deterministic
// text and is never validated.
func validateReply(text string, minChars, maxChars int) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return fmt.Errorf("empty reply")
	}
	if len(trimmed) < minChars {
		return fmt.Errorf("reply too short: %d chars", len(trimmed))
	}
	if len(trimmed) > maxChars {
		return fmt.Errorf("reply too long: %d chars", len(trimmed))
	}

	lowered := strings.ToLower(trimmed)
	for _, phrase := range disclaimerPhrases {
		if strings.Contains(lowered, phrase) {
			return fmt.Errorf("reply contains disclaimer phrase %q", phrase)
		}
	}
	return nil
}
