package offer

import "github.com/offerpilot/offerpilot/internal/domain"

// Style selects the offer formula: how aggressive the price anchor is and
// which flavor of urgency copy is used.
type Style string

const (
	StyleFormulaA Style = "formula_a" // conservative anchor, soft urgency
	StyleFormulaB Style = "formula_b" // standard anchor
	StyleFormulaC Style = "formula_c" // aggressive anchor, hard urgency
)

// ParseStyle maps caller input onto a known style, defaulting to formula_b.
func ParseStyle(s string) Style {
	switch Style(s) {
	case StyleFormulaA, StyleFormulaC:
		return Style(s)
	default:
		return StyleFormulaB
	}
}

// Offer price as a fraction of total stacked value, per style.
var priceFractionByStyle = map[Style]float64{
	StyleFormulaA: 0.20,
	StyleFormulaB: 0.15,
	StyleFormulaC: 0.10,
}

// offerTemplate is a fixed value-stack template for one detected industry.
// Values are in the detected currency's units.
type offerTemplate struct {
	DreamOutcome string
	ValueStack   []domain.ValueItem
	Bonuses      []string
}

// Marketing copy below is localizable content data, not logic.
var industryTemplates = map[string]offerTemplate{
	"Aesthetic Clinic": {
		DreamOutcome: "Look in the mirror and love what you see, without surgery or downtime",
		ValueStack: []domain.ValueItem{
			{Item: "Full Treatment Course (8 sessions)", Value: 1997, Description: "Complete body contouring programme tailored to your goals"},
			{Item: "Personalised Treatment Plan", Value: 297, Description: "Mapped by a senior practitioner at your consultation"},
			{Item: "Skin Analysis & Progress Photography", Value: 197, Description: "Tracked results at every visit"},
			{Item: "Aftercare Support Programme", Value: 147, Description: "Direct line to your practitioner between sessions"},
		},
		Bonuses: []string{"Free top-up session at 12 weeks", "Partner discount voucher"},
	},
	"Wellness Clinic": {
		DreamOutcome: "Reach your goal weight and keep it off, with medical supervision every step",
		ValueStack: []domain.ValueItem{
			{Item: "12-Week Medically Supervised Programme", Value: 1497, Description: "Weekly check-ins with a prescribing clinician"},
			{Item: "Body Composition Analysis", Value: 197, Description: "Baseline and monthly scans"},
			{Item: "Nutrition Blueprint", Value: 247, Description: "Built around your routine, not a generic diet sheet"},
			{Item: "Private Support Community", Value: 97, Description: "Daily accountability"},
		},
		Bonuses: []string{"Maintenance month free"},
	},
	"Fitness Studio": {
		DreamOutcome: "Drop two dress sizes in 12 weeks without living in the gym",
		ValueStack: []domain.ValueItem{
			{Item: "12-Week Transformation Programme", Value: 997, Description: "Three coached sessions per week"},
			{Item: "Custom Nutrition Plan", Value: 197, Description: "Adjusted every two weeks"},
			{Item: "Weekly Accountability Check-ins", Value: 147, Description: "Your coach keeps you on track"},
			{Item: "Progress Tracking App Access", Value: 97, Description: "Every session and meal logged"},
		},
		Bonuses: []string{"Free partner pass for month one"},
	},
	"Hair Salon": {
		DreamOutcome: "Walk out with hair you can't stop touching, and keep it that way",
		ValueStack: []domain.ValueItem{
			{Item: "Signature Colour & Cut Package", Value: 397, Description: "With a senior stylist"},
			{Item: "In-Chair Conditioning Treatment", Value: 97, Description: "Salon-grade repair"},
			{Item: "Home Care Kit", Value: 87, Description: "The exact products your stylist uses"},
		},
		Bonuses: []string{"Free fringe trims between visits"},
	},
	"Dental Practice": {
		DreamOutcome: "Smile in photos again, with straighter, whiter teeth in months not years",
		ValueStack: []domain.ValueItem{
			{Item: "Complete Smile Assessment & 3D Scan", Value: 297, Description: "See your result before you start"},
			{Item: "Full Aligner Treatment", Value: 2497, Description: "Clinician-monitored throughout"},
			{Item: "Professional Whitening", Value: 397, Description: "Included at the end of treatment"},
			{Item: "Lifetime Retainer Plan", Value: 497, Description: "Keep the result forever"},
		},
		Bonuses: []string{"Free hygiene visit"},
	},
	"Coaching": {
		DreamOutcome: "A business that pays you predictably, without working more hours",
		ValueStack: []domain.ValueItem{
			{Item: "90-Day 1:1 Coaching Programme", Value: 2997, Description: "Weekly strategy calls"},
			{Item: "Complete Systems Library", Value: 997, Description: "Templates for every process we install"},
			{Item: "Voice-Note Access Between Calls", Value: 497, Description: "Never stuck for more than a few hours"},
		},
		Bonuses: []string{"Lifetime alumni community access"},
	},
	"Service Business": {
		DreamOutcome: "The result you want, handled end to end by people who do this every day",
		ValueStack: []domain.ValueItem{
			{Item: "Complete Done-For-You Service", Value: 997, Description: "Everything handled by our team"},
			{Item: "Priority Scheduling", Value: 147, Description: "Your job jumps the queue"},
			{Item: "Dedicated Account Contact", Value: 97, Description: "One person who knows your job"},
		},
		Bonuses: []string{"Free follow-up visit"},
	},
}

// templateFor returns the industry's template, falling back to the generic
// service template.
func templateFor(businessType string) offerTemplate {
	if tpl, ok := industryTemplates[businessType]; ok {
		return tpl
	}
	return industryTemplates["Service Business"]
}

// Guarantee copy keyed by the competitive gap being exploited.
const (
	guaranteeExploitGap = "Double money-back guarantee: see measurable results or get twice your money back. Nobody else in your area offers this."
	guaranteeStandard   = "Full money-back guarantee: if you're not delighted with your results, every penny back, no questions asked."
)

// Urgency and scarcity copy per style.
var urgencyByStyle = map[Style]string{
	StyleFormulaA: "This offer is available for a limited time.",
	StyleFormulaB: "This pricing ends Friday at midnight.",
	StyleFormulaC: "This pricing ends tonight and will not be repeated.",
}

var scarcityByStyle = map[Style]string{
	StyleFormulaA: "We take on a limited number of new clients each month.",
	StyleFormulaB: "Only 5 spots remain at this price this month.",
	StyleFormulaC: "2 spots left. When they're gone, they're gone.",
}
