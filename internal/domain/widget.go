package domain

import "time"

// WidgetConfig is the embeddable widget's per-account configuration.
// Stored behind a key-value abstraction, injected where needed; there is
// no process-global config map.
type WidgetConfig struct {
	WidgetID     string    `json:"widget_id"`
	BusinessName string    `json:"business_name"`
	Industry     string    `json:"industry,omitempty"`
	SiteURL      string    `json:"site_url,omitempty"`
	Headline     string    `json:"headline,omitempty"`
	PrimaryColor string    `json:"primary_color,omitempty"`
	OfferStyle   string    `json:"offer_style,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields callers must supply.
func (c *WidgetConfig) Validate() error {
	if c.WidgetID == "" {
		return ValidationError("widget_id", "widget id is required")
	}
	if c.BusinessName == "" {
		return ValidationError("business_name", "business name is required")
	}
	return nil
}
