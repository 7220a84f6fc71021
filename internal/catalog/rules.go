package catalog

// RuleSet is the closed interface over per-service pricing constants. Each
// service kind carries its own typed rule struct; dispatch on the concrete
// type is exhaustive so adding a service is a compile-time-checked change.
type RuleSet interface {
	// Bounds returns the [min, max] clamp applied to every computed price.
	Bounds() (min, max float64)
}

// PlasteringRules prices plaster work by area with type and finish surcharges.
type PlasteringRules struct {
	BasePricePerM2     float64 `json:"base_price_per_m2"`
	DrywallMultiplier  float64 `json:"drywall_multiplier"`
	DecorationFee      float64 `json:"decoration_fee"`
	ColorFeePerM2      float64 `json:"color_fee_per_m2"`
	MaterialMultiplier float64 `json:"material_multiplier"`
	MinPrice           float64 `json:"min_price"`
	MaxPrice           float64 `json:"max_price"`
}

func (r *PlasteringRules) Bounds() (float64, float64) { return r.MinPrice, r.MaxPrice }

// CarpentryRules prices furniture by volume and material, plus fixed fees.
// UnitPricePerCm3 is keyed by the material select value; the "other" entry is
// the fallback for unlisted materials.
type CarpentryRules struct {
	UnitPricePerCm3    map[string]float64 `json:"unit_price_per_cm3"`
	FinishingFee       float64            `json:"finishing_fee"`
	AssemblyFeePerHour float64            `json:"assembly_fee_per_hour"`
	MinPrice           float64            `json:"min_price"`
	MaxPrice           float64            `json:"max_price"`
}

func (r *CarpentryRules) Bounds() (float64, float64) { return r.MinPrice, r.MaxPrice }

// MaterialPrice resolves the per-cm³ unit price for a material select value.
func (r *CarpentryRules) MaterialPrice(material string) float64 {
	if p, ok := r.UnitPricePerCm3[material]; ok {
		return p
	}
	return r.UnitPricePerCm3["other"]
}

// StoneworkRules prices stone surfaces by area and material, with processing,
// edge-finishing and installation components.
type StoneworkRules struct {
	UnitPricePerM2       map[string]float64 `json:"unit_price_per_m2"`
	ProcessingFeePerM2   float64            `json:"processing_fee_per_m2"`
	EdgeFinishingFee     float64            `json:"edge_finishing_fee"`
	InstallationFeeBase  float64            `json:"installation_fee_base"`
	InstallationFeePerM2 float64            `json:"installation_fee_per_m2"`
	MinPrice             float64            `json:"min_price"`
	MaxPrice             float64            `json:"max_price"`
}

func (r *StoneworkRules) Bounds() (float64, float64) { return r.MinPrice, r.MaxPrice }

// MaterialPrice resolves the per-m² unit price for a stone select value.
func (r *StoneworkRules) MaterialPrice(material string) float64 {
	if p, ok := r.UnitPricePerM2[material]; ok {
		return p
	}
	return r.UnitPricePerM2["other"]
}

// PaintingRules prices painting by area and environment, with extra-coat and
// texture surcharges.
type PaintingRules struct {
	UnitPricePerM2    map[string]float64 `json:"unit_price_per_m2"`
	PricePerExtraCoat float64            `json:"price_per_extra_coat"`
	TextureFeePerM2   float64            `json:"texture_fee_per_m2"`
	MinPrice          float64            `json:"min_price"`
	MaxPrice          float64            `json:"max_price"`
}

func (r *PaintingRules) Bounds() (float64, float64) { return r.MinPrice, r.MaxPrice }

// EnvironmentPrice resolves the per-m² unit price for an environment value.
func (r *PaintingRules) EnvironmentPrice(environment string) float64 {
	return r.UnitPricePerM2[environment]
}
