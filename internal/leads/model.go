package leads

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
	"github.com/homequote/homequote/internal/pricing"
)

// Lead is a saved quote request: the full answer snapshot plus the price
// that was quoted at the moment the visitor asked to be contacted.
type Lead struct {
	ID             string             `json:"id"`
	SessionID      string             `json:"session_id"`
	ServiceKey     catalog.ServiceKey `json:"service_key"`
	ServiceName    string             `json:"service_name"`
	Answers        flow.Answers       `json:"answers"`
	EstimatedPrice decimal.Decimal    `json:"estimated_price"`
	PriceRange     pricing.Range      `json:"price_range"`
	Explanation    []pricing.LineItem `json:"explanation"`
	CreatedAt      time.Time          `json:"created_at"`
}

// ListFilter narrows an admin lead listing.
type ListFilter struct {
	Service catalog.ServiceKey
	Limit   int
	Offset  int
}
