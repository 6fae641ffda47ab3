package model

// Plan represents a purchasable subscription plan as served by the billing API.
type Plan struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	StoreProductID string   `json:"storeProductId,omitempty"` // app-store product mapping
	PriceCents     int64    `json:"priceCents"`
	Currency       string   `json:"currency"`
	PeriodDays     int      `json:"periodDays"`
	IsTrial        bool     `json:"isTrial,omitempty"`
	Features       []string `json:"features,omitempty"`
	SortOrder      int      `json:"sortOrder,omitempty"`
}

// FirstTrial returns the first trial plan in the given order, if any.
func FirstTrial(plans []Plan) (Plan, bool) {
	for _, p := range plans {
		if p.IsTrial {
			return p, true
		}
	}
	return Plan{}, false
}
