// Package visual produces the lightweight preview shown after a quote:
// a textual description of the finished work plus the colors a client
// widget needs to render a swatch.
package visual

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/homequote/homequote/internal/catalog"
	"github.com/homequote/homequote/internal/flow"
)

// placeholderBase is the simulated image service the preview links to.
const placeholderBase = "https://via.placeholder.com/600x400"

// Rendering is the preview payload sent to the client.
type Rendering struct {
	Service      catalog.ServiceKey `json:"service"`
	Description  string             `json:"description"`
	ImageURL     string             `json:"image_url"`
	PrimaryColor string             `json:"primary_color"`
	TextColor    string             `json:"text_color"`
}

// Simulate builds a preview for a finished answer set. Unknown services
// fall back to a generic description rather than failing; the preview is
// decorative and must never block the quote.
func Simulate(key catalog.ServiceKey, answers flow.Answers) Rendering {
	r := Rendering{
		Service:      key,
		PrimaryColor: "#FFFFFF",
	}

	switch key {
	case catalog.ServicePlastering:
		r.PrimaryColor = colorOr(answers, "finish_color", "#FFFFFF")
		r.Description = fmt.Sprintf("%s plaster finish over %s m²",
			answers.Text("plaster_type"), formatArea(answers.Number("area_m2")))
	case catalog.ServiceCarpentry:
		r.PrimaryColor = colorOr(answers, "finish_color", "#8B4513")
		r.Description = fmt.Sprintf("custom %s in %s, %s×%s×%s cm",
			strings.TrimSpace(answers.Text("furniture_type")),
			answers.Text("material"),
			formatArea(answers.Number("height_cm")),
			formatArea(answers.Number("width_cm")),
			formatArea(answers.Number("depth_cm")))
	case catalog.ServiceStonework:
		r.PrimaryColor = colorOr(answers, "stone_color", "#D3D3D3")
		r.Description = fmt.Sprintf("%s in %s, %s m²",
			answers.Text("surface_type"), answers.Text("material"),
			formatArea(answers.Number("area_m2")))
	case catalog.ServicePainting:
		r.PrimaryColor = colorOr(answers, "color", "#FFFFFF")
		r.Description = fmt.Sprintf("%s painted with %s, %s m²",
			answers.Text("environment"), answers.Text("paint_type"),
			formatArea(answers.Number("area_m2")))
	default:
		r.Description = "requested work"
	}

	r.TextColor = ContrastColor(r.PrimaryColor)
	r.ImageURL = imageURL(r.PrimaryColor, r.TextColor, r.Description)
	return r
}

// imageURL builds a placeholder image link carrying the swatch colors and
// the description as overlay text. Free-text color names drop the color
// path segments, which the placeholder service does not understand.
func imageURL(primary, text, description string) string {
	u := placeholderBase
	if bg, ok := hexSegment(primary); ok {
		fg, _ := hexSegment(text)
		u += "/" + bg + "/" + fg
	}
	return u + ".png?text=" + url.QueryEscape(description)
}

// ContrastColor picks black or white text for a hex background using the
// YIQ brightness formula. Inputs that are not parseable hex colors get
// black text.
func ContrastColor(hex string) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return "#000000"
	}
	brightness := (r*299 + g*587 + b*114) / 1000
	if brightness >= 128 {
		return "#000000"
	}
	return "#FFFFFF"
}

func parseHex(hex string) (r, g, b int, ok bool) {
	seg, ok := hexSegment(hex)
	if !ok {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(seg, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16), int(v >> 8 & 0xFF), int(v & 0xFF), true
}

// hexSegment normalizes a color to a six-digit hex string without the
// leading hash, reporting false for anything that is not a hex color.
func hexSegment(hex string) (string, bool) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return "", false
	}
	for i := 0; i < len(hex); i++ {
		c := hex[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return "", false
		}
	}
	return hex, true
}

func colorOr(answers flow.Answers, id, fallback string) string {
	if answers.TextFilled(id) {
		return answers.Text(id)
	}
	return fallback
}

func formatArea(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
