// Package pricing computes price estimates for completed question flows.
// Compute is a pure function: identical inputs always produce identical
// results, so the interactive estimate and the persisted lead recomputation
// can never drift apart.
package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
)

// ErrUnsupportedService is returned when a service key has no pricing
// strategy. With a closed catalog this should be unreachable; callers must
// abort pricing and not persist anything.
var ErrUnsupportedService = errors.New("pricing: unsupported service")

// assemblyHours is the fixed simulated assembly time charged on carpentry.
const assemblyHours = 2

// Bound names the clamp bound that fired, if any.
type Bound string

const (
	BoundNone Bound = ""
	BoundMin  Bound = "min"
	BoundMax  Bound = "max"
)

// LineItem is one entry of the ordered price explanation.
type LineItem struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Range is the uncertainty band around the suggested price.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// Result is the outcome of a price computation.
type Result struct {
	SuggestedPrice decimal.Decimal `json:"suggested_price"`
	Range          Range           `json:"range"`
	Explanation    []LineItem      `json:"explanation"`
	Clamped        Bound           `json:"clamped,omitempty"`
}

// Compute prices a completed answer set for the given service. The raw
// per-service total is clamped to the service's [min, max] bounds, rounded to
// two decimal places, and widened into a ±15% range.
func Compute(svc *catalog.Service, answers flow.Answers) (*Result, error) {
	if svc == nil || !svc.Key.Valid() {
		return nil, ErrUnsupportedService
	}

	total, lines, err := rawTotal(svc, answers)
	if err != nil {
		return nil, err
	}

	minPrice, maxPrice := svc.Rules.Bounds()
	clamped := BoundNone
	if min := dec(minPrice); total.LessThan(min) {
		total = min
		clamped = BoundMin
		lines = append(lines, LineItem{Label: fmt.Sprintf("Adjusted up to the minimum price of %s", min.StringFixed(2)), Amount: min})
	} else if max := dec(maxPrice); total.GreaterThan(max) {
		total = max
		clamped = BoundMax
		lines = append(lines, LineItem{Label: fmt.Sprintf("Adjusted down to the maximum price of %s", max.StringFixed(2)), Amount: max})
	}

	suggested := total.Round(2)
	return &Result{
		SuggestedPrice: suggested,
		Range: Range{
			Min: suggested.Mul(dec(0.85)).Round(2),
			Max: suggested.Mul(dec(1.15)).Round(2),
		},
		Explanation: lines,
		Clamped:     clamped,
	}, nil
}

// rawTotal dispatches to the per-service strategy. The switch is exhaustive
// over the closed set of service kinds; a rule set of the wrong concrete type
// is treated as an unsupported service.
func rawTotal(svc *catalog.Service, answers flow.Answers) (decimal.Decimal, []LineItem, error) {
	switch svc.Key {
	case catalog.ServicePlastering:
		if rules, ok := svc.Rules.(*catalog.PlasteringRules); ok {
			return plasteringTotal(svc, rules, answers)
		}
	case catalog.ServiceCarpentry:
		if rules, ok := svc.Rules.(*catalog.CarpentryRules); ok {
			return carpentryTotal(rules, answers)
		}
	case catalog.ServiceStonework:
		if rules, ok := svc.Rules.(*catalog.StoneworkRules); ok {
			return stoneworkTotal(rules, answers)
		}
	case catalog.ServicePainting:
		if rules, ok := svc.Rules.(*catalog.PaintingRules); ok {
			return paintingTotal(rules, answers)
		}
	}
	return decimal.Zero, nil, fmt.Errorf("%w: %s", ErrUnsupportedService, svc.Key)
}

// plasteringTotal: area times the (possibly drywall-adjusted) base rate, plus
// decoration and non-default color surcharges, with the material margin
// multiplied onto the already-adjusted total.
func plasteringTotal(svc *catalog.Service, rules *catalog.PlasteringRules, answers flow.Answers) (decimal.Decimal, []LineItem, error) {
	area := dec(answers.Number("area_m2"))

	unit := dec(rules.BasePricePerM2)
	if answers.Text("plaster_type") == "drywall" {
		unit = unit.Mul(dec(rules.DrywallMultiplier))
	}

	base := area.Mul(unit)
	lines := []LineItem{{
		Label:  fmt.Sprintf("Plastering base (%s/m²)", unit.StringFixed(2)),
		Amount: base,
	}}
	total := base

	if answers.IsTrue("extra_details") {
		fee := dec(rules.DecorationFee)
		total = total.Add(fee)
		lines = append(lines, LineItem{Label: "Decorative details (coves, moldings)", Amount: fee})
	}

	if color := answers.Text("finish_color"); color != "" && color != defaultFor(svc, "finish_color") {
		fee := area.Mul(dec(rules.ColorFeePerM2))
		total = total.Add(fee)
		lines = append(lines, LineItem{Label: "Custom finish color", Amount: fee})
	}

	// Material margin is applied last, over the total including extras.
	margin := total.Mul(dec(rules.MaterialMultiplier)).Sub(total)
	total = total.Add(margin)
	lines = append(lines, LineItem{
		Label:  fmt.Sprintf("Material margin (+%s%%)", dec(rules.MaterialMultiplier).Sub(dec(1)).Mul(dec(100)).StringFixed(0)),
		Amount: margin,
	})

	return total, lines, nil
}

// carpentryTotal: volume at the material's unit price (scaled by a fixed ×10
// realism factor), plus finishing and a fixed two-hour assembly charge.
func carpentryTotal(rules *catalog.CarpentryRules, answers flow.Answers) (decimal.Decimal, []LineItem, error) {
	volume := dec(answers.Number("height_cm")).
		Mul(dec(answers.Number("width_cm"))).
		Mul(dec(answers.Number("depth_cm")))

	unit := dec(rules.MaterialPrice(answers.Text("material")))
	base := volume.Mul(unit).Mul(dec(10))
	lines := []LineItem{{
		Label:  fmt.Sprintf("Material and cutting (%s/cm³ × %s cm³)", unit.String(), volume.String()),
		Amount: base,
	}}
	total := base

	if answers.TextFilled("finish_color") {
		fee := dec(rules.FinishingFee)
		total = total.Add(fee)
		lines = append(lines, LineItem{Label: "Finishing", Amount: fee})
	}

	assembly := dec(rules.AssemblyFeePerHour).Mul(dec(assemblyHours))
	total = total.Add(assembly)
	lines = append(lines, LineItem{Label: fmt.Sprintf("Assembly (%dh)", assemblyHours), Amount: assembly})

	return total, lines, nil
}

// stoneworkTotal: material and processing by area, edge finishing only on
// countertops that specified one, plus base-and-per-m² installation.
func stoneworkTotal(rules *catalog.StoneworkRules, answers flow.Answers) (decimal.Decimal, []LineItem, error) {
	area := dec(answers.Number("area_m2"))
	material := answers.Text("material")

	base := area.Mul(dec(rules.MaterialPrice(material)))
	lines := []LineItem{{Label: fmt.Sprintf("Stone (%s)", material), Amount: base}}
	total := base

	processing := area.Mul(dec(rules.ProcessingFeePerM2))
	total = total.Add(processing)
	lines = append(lines, LineItem{
		Label:  fmt.Sprintf("Processing and cutting (%s/m²)", dec(rules.ProcessingFeePerM2).StringFixed(2)),
		Amount: processing,
	})

	if answers.TextFilled("edge_finish") && isCounter(answers.Text("surface_type")) {
		fee := dec(rules.EdgeFinishingFee)
		total = total.Add(fee)
		lines = append(lines, LineItem{Label: "Edge finishing", Amount: fee})
	}

	installation := dec(rules.InstallationFeeBase).Add(area.Mul(dec(rules.InstallationFeePerM2)))
	total = total.Add(installation)
	lines = append(lines, LineItem{
		Label: fmt.Sprintf("Installation (base %s + %s/m²)",
			dec(rules.InstallationFeeBase).StringFixed(2), dec(rules.InstallationFeePerM2).StringFixed(2)),
		Amount: installation,
	})

	return total, lines, nil
}

// paintingTotal: area at the environment rate, extra coats beyond two, and a
// texture surcharge when the free-text paint type mentions texture.
func paintingTotal(rules *catalog.PaintingRules, answers flow.Answers) (decimal.Decimal, []LineItem, error) {
	area := dec(answers.Number("area_m2"))
	environment := answers.Text("environment")

	base := area.Mul(dec(rules.EnvironmentPrice(environment)))
	lines := []LineItem{{Label: fmt.Sprintf("Painting base (%s)", environment), Amount: base}}
	total := base

	coats := answers.Number("coats")
	if !answers.Has("coats") {
		coats = 2
	}
	if extra := int(coats) - 2; extra > 0 {
		fee := area.Mul(dec(rules.PricePerExtraCoat)).Mul(decimal.NewFromInt(int64(extra)))
		total = total.Add(fee)
		lines = append(lines, LineItem{Label: fmt.Sprintf("Extra coats (%d)", extra), Amount: fee})
	}

	if strings.Contains(strings.ToLower(answers.Text("paint_type")), "texture") {
		fee := area.Mul(dec(rules.TextureFeePerM2))
		total = total.Add(fee)
		lines = append(lines, LineItem{
			Label:  fmt.Sprintf("Texture (%s/m²)", dec(rules.TextureFeePerM2).StringFixed(2)),
			Amount: fee,
		})
	}

	return total, lines, nil
}

func isCounter(surface string) bool {
	return surface == "kitchen-counter" || surface == "bathroom-counter"
}

// defaultFor looks up the declared default answer for a question id.
func defaultFor(svc *catalog.Service, questionID string) string {
	if q, ok := svc.Question(questionID); ok {
		return q.Default
	}
	return ""
}

func dec(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
