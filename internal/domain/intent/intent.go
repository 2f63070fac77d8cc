package intent

// Label is the coarse classification of a user message's purpose.
type Label string

const (
	LabelPropertySearch      Label = "property_search"
	LabelPropertyInquiry     Label = "property_inquiry"
	LabelApplicationGuidance Label = "application_guidance"
	LabelMaintenanceRequest  Label = "maintenance_request"
	LabelMaintenanceFollowup Label = "maintenance_followup"
	LabelScheduling          Label = "scheduling"
	LabelPricingNegotiation  Label = "pricing_negotiation"
	LabelGreeting            Label = "greeting"
	LabelGeneralInquiry      Label = "general_inquiry"
)

// Entity keys produced by extraction. Values are free-form: bedroom_count is
// an int, budget a decimal.Decimal, location a string, amenities a []string.
const (
	EntityBedroomCount = "bedroom_count"
	EntityBudget       = "budget"
	EntityLocation     = "location"
	EntityAmenities    = "amenities"
)

// Result is the classifier output for one message.
// Confidence is always within [0, 1].
type Result struct {
	Label      Label
	Confidence float64
	Entities   map[string]any
}

// HasEntity reports whether extraction produced the given key.
func (r Result) HasEntity(key string) bool {
	_, ok := r.Entities[key]
	return ok
}
