package domain

import (
	"time"

	"github.com/google/uuid"
)

// Default fraction of total stacked value used when a generated offer price
// has to be clamped back under the total.
const OfferPriceClampFraction = 0.20

// ValueItem is one line of an offer's value stack. Order is display order
// and meaningful: highest perceived value first.
type ValueItem struct {
	Item        string  `json:"item"`
	Value       float64 `json:"value"`
	Description string  `json:"description,omitempty"`
}

// OfferPricing holds the price anchor for a generated offer.
// Invariant: OfferPrice < TotalValue.
type OfferPricing struct {
	TotalValue  float64  `json:"total_value"`
	OfferPrice  float64  `json:"offer_price"`
	PaymentPlan *float64 `json:"payment_plan,omitempty"` // monthly amount, optional
	Currency    Currency `json:"currency"`
}

// GeneratedOffer is a synthesized commercial offer. Immutable once returned;
// persistence is the caller's concern.
type GeneratedOffer struct {
	DreamOutcome string       `json:"dream_outcome"`
	ValueStack   []ValueItem  `json:"value_stack"`
	Pricing      OfferPricing `json:"pricing"`
	Guarantee    string       `json:"guarantee"`
	Urgency      string       `json:"urgency"`
	Scarcity     string       `json:"scarcity"`
	Bonuses      []string     `json:"bonuses,omitempty"`
}

// StackedValue sums the value stack.
func (o *GeneratedOffer) StackedValue() float64 {
	var total float64
	for _, item := range o.ValueStack {
		total += item.Value
	}
	return total
}

// Normalize enforces the pricing invariants regardless of which mode
// produced the offer. TotalValue is derived from the stack when absent,
// and OfferPrice is clamped to 20% of TotalValue when a model response
// violates OfferPrice < TotalValue.
func (o *GeneratedOffer) Normalize() {
	if o.Pricing.TotalValue <= 0 {
		o.Pricing.TotalValue = o.StackedValue()
	}
	if o.Pricing.TotalValue > 0 && o.Pricing.OfferPrice >= o.Pricing.TotalValue {
		o.Pricing.OfferPrice = o.Pricing.TotalValue * OfferPriceClampFraction
	}
	if o.Pricing.Currency == "" {
		o.Pricing.Currency = CurrencyUSD
	}
	if o.Bonuses == nil {
		o.Bonuses = []string{}
	}
}

// Validate checks the shape a model response must satisfy before the offer
// is accepted. Schema mismatch triggers provider fallback, so partial
// objects are rejected rather than trusted.
func (o *GeneratedOffer) Validate() error {
	if o.DreamOutcome == "" {
		return ValidationError("dream_outcome", "dream outcome is required")
	}
	if len(o.ValueStack) == 0 {
		return ValidationError("value_stack", "value stack must not be empty")
	}
	for _, item := range o.ValueStack {
		if item.Item == "" || item.Value <= 0 {
			return ValidationError("value_stack", "every stack line needs a name and a positive value")
		}
	}
	if o.Pricing.OfferPrice <= 0 {
		return ValidationError("pricing", "offer price must be positive")
	}
	if o.Guarantee == "" {
		return ValidationError("guarantee", "guarantee is required")
	}
	return nil
}

// OfferRecord is a persisted offer keyed by an opaque lead/session id.
type OfferRecord struct {
	ID        uuid.UUID       `json:"id"`
	LeadID    string          `json:"lead_id"`
	Offer     *GeneratedOffer `json:"offer"`
	ModelUsed string          `json:"model_used"`
	AIPowered bool            `json:"ai_powered"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewOfferRecord builds a persistable record for a finished offer.
func NewOfferRecord(leadID string, offer *GeneratedOffer, modelUsed string, aiPowered bool) *OfferRecord {
	return &OfferRecord{
		ID:        uuid.New(),
		LeadID:    leadID,
		Offer:     offer,
		ModelUsed: modelUsed,
		AIPowered: aiPowered,
		CreatedAt: time.Now().UTC(),
	}
}
