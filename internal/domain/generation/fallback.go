package generation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/intent"
)

// Synthesize produces the deterministic rule-based reply used when every
// provider failed or none is configured. It is a pure function of the intent
// result and context: no network, cannot fail, always returns non-empty text.
func Synthesize(res intent.Result, convCtx conversation.Context) string {
	switch res.Label {
	case intent.LabelPropertySearch:
		return synthesizeSearch(res)
	case intent.LabelPropertyInquiry:
		return synthesizeInquiry(convCtx)
	case intent.LabelApplicationGuidance:
		return "Applying is straightforward: open the listing, tap Apply, and upload " +
			"proof of income, photo ID and references. Most landlords respond within " +
			"two business days. Want me to flag anything specific to the landlord?"
	case intent.LabelMaintenanceRequest:
		return "Sorry to hear that. I've noted the issue for the landlord. For urgent " +
			"problems like water, gas or electrical faults, please also use the " +
			"emergency contact on your lease. Can you share a photo or more detail?"
	case intent.LabelMaintenanceFollowup:
		return "Let me check on that repair for you. The landlord has been notified of " +
			"your follow-up. If this has been open for more than a week, I can " +
			"escalate it to our support team."
	case intent.LabelScheduling:
		return "Happy to help set up a viewing. Share a couple of time slots that work " +
			"for you and I'll pass them to the landlord to confirm."
	case intent.LabelPricingNegotiation:
		return "Pricing is set by the landlord, but I can pass along an offer. Listings " +
			"on HomeMatch also show whether utilities and deposit terms are " +
			"negotiable. What did you have in mind?"
	case intent.LabelGreeting:
		return "Hi! I'm the HomeMatch assistant. I can help you search for rentals, " +
			"ask about a listing, book viewings or report maintenance issues. What " +
			"can I do for you?"
	default:
		return "Thanks for your message. I can help with finding rentals, questions " +
			"about a listing, applications, viewings and maintenance. Could you tell " +
			"me a bit more about what you need?"
	}
}

func synthesizeSearch(res intent.Result) string {
	var criteria []string
	if bedrooms, ok := res.Entities[intent.EntityBedroomCount].(int); ok {
		if bedrooms == 0 {
			criteria = append(criteria, "studio")
		} else {
			criteria = append(criteria, fmt.Sprintf("%d bedroom", bedrooms))
		}
	}
	if budget, ok := res.Entities[intent.EntityBudget].(decimal.Decimal); ok {
		criteria = append(criteria, fmt.Sprintf("under $%s", budget.StringFixed(0)))
	}
	if location, ok := res.Entities[intent.EntityLocation].(string); ok {
		criteria = append(criteria, "in "+location)
	}
	if amenities, ok := res.Entities[intent.EntityAmenities].([]string); ok && len(amenities) > 0 {
		criteria = append(criteria, "with "+strings.Join(amenities, ", "))
	}

	if len(criteria) == 0 {
		return "I can help you find a place. What area, budget and number of bedrooms " +
			"are you looking for?"
	}
	return fmt.Sprintf("Got it, you're looking for a place %s. I've saved these "+
		"criteria to your search. You can browse matching listings from your "+
		"dashboard, and I'll let you know when new matches appear.",
		strings.Join(criteria, ", "))
}

func synthesizeInquiry(convCtx conversation.Context) string {
	listing := convCtx.Listing
	if listing == nil {
		return "Which listing are you asking about? Open it on HomeMatch and message " +
			"from there so I can pull up the details."
	}
	reply := fmt.Sprintf("%s in %s is listed at $%s/month with %d bedroom(s).",
		listing.Title, listing.Location, listing.Price.StringFixed(0), listing.Bedrooms)
	if len(listing.Amenities) > 0 {
		reply += " Amenities include " + strings.Join(listing.Amenities, ", ") + "."
	}
	return reply + " Would you like to book a viewing?"
}
