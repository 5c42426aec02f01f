package extract

// businessTypeRule classifies a page by the first rule whose keywords match.
// Order matters: more specific niches sit above generic ones.
type businessTypeRule struct {
	Type     string
	Keywords []string
}

var businessTypeRules = []businessTypeRule{
	{"Aesthetic Clinic", []string{"botox", "dermal filler", "lip filler", "anti-wrinkle", "skin clinic", "aesthetics", "medspa", "med spa"}},
	{"Hair Salon", []string{"balayage", "hair salon", "hairdresser", "blow dry", "hair extensions", "colourist", "colorist"}},
	{"Beauty Salon", []string{"lash extensions", "eyelash", "waxing", "manicure", "pedicure", "beauty salon", "brows", "microblading"}},
	{"Dental Practice", []string{"dentist", "dental", "invisalign", "teeth whitening", "orthodontic", "veneers"}},
	{"Fitness Studio", []string{"personal training", "personal trainer", "gym membership", "bootcamp", "crossfit", "pilates", "fitness studio"}},
	{"Chiropractor", []string{"chiropractic", "chiropractor", "spinal adjustment", "back pain clinic"}},
	{"Physiotherapy", []string{"physiotherapy", "physiotherapist", "physical therapy", "sports injury", "rehab clinic"}},
	{"Wellness Clinic", []string{"weight loss", "ozempic", "semaglutide", "iv drip", "vitamin injection", "hormone therapy", "wellness clinic"}},
	{"Tattoo Studio", []string{"tattoo", "piercing", "tattoo artist", "tattoo studio"}},
	{"Photography", []string{"photographer", "photography", "photo shoot", "wedding photos"}},
	{"Coaching", []string{"business coach", "life coach", "coaching program", "coaching programme", "mastermind", "1:1 coaching"}},
	{"Marketing Agency", []string{"lead generation", "marketing agency", "facebook ads", "google ads", "seo agency", "ppc"}},
	{"Home Services", []string{"plumber", "plumbing", "electrician", "roofing", "landscaping", "cleaning service", "pest control"}},
	{"Auto Services", []string{"car detailing", "mot", "auto repair", "car service", "tyres", "tires", "windscreen"}},
	{"Restaurant", []string{"restaurant", "takeaway", "book a table", "our menu", "catering"}},
	{"Real Estate", []string{"estate agent", "real estate", "property for sale", "lettings", "realtor"}},
}

// Phrases that indicate a guarantee or risk reversal.
var guaranteeKeywords = []string{
	"money back",
	"money-back",
	"guarantee",
	"guaranteed",
	"refund",
	"risk free",
	"risk-free",
	"no questions asked",
	"satisfaction",
	"or it's free",
	"or its free",
	"we'll fix it free",
}

// Phrases that indicate urgency or scarcity.
var urgencyKeywords = []string{
	"limited time",
	"limited spots",
	"limited availability",
	"only ",
	"spots left",
	"spaces left",
	"places left",
	"ends soon",
	"ends tonight",
	"ends friday",
	"today only",
	"this week only",
	"this month only",
	"book now",
	"act now",
	"don't miss",
	"dont miss",
	"last chance",
	"closing soon",
	"while stocks last",
	"offer expires",
	"hurry",
	"selling fast",
	"almost gone",
	"final call",
}

// CSS selectors that commonly wrap testimonial copy.
var testimonialSelectors = []string{
	".testimonial",
	".testimonials li",
	".review",
	".reviews li",
	"[class*='testimonial']",
	"[class*='review-card']",
	"blockquote",
}

// CSS selectors that commonly wrap feature or benefit copy.
var featureSelectors = []string{
	".features li",
	".benefits li",
	"[class*='feature'] li",
	"[class*='benefit'] li",
	"ul.checklist li",
	".services li",
	"[class*='service-card'] h3",
	"[class*='service-card'] h4",
}

// CSS selectors for call-to-action elements.
var ctaSelectors = []string{
	"button",
	"a.btn",
	"a.button",
	"[class*='cta'] a",
	"a[class*='btn']",
	"input[type='submit']",
}
