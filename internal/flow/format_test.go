package flow

import (
	"testing"

	"github.com/homequote/homequote/internal/catalog"
)

func TestFormatAnswer(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		q    catalog.Question
		want string
	}{
		{"bool true", BoolValue(true), catalog.Question{Type: catalog.TypeBoolean}, "Yes"},
		{"bool false", BoolValue(false), catalog.Question{Type: catalog.TypeBoolean}, "No"},
		{"integer with unit", NumberValue(100), catalog.Question{Type: catalog.TypeNumber, Unit: "m²"}, "100 m²"},
		{"fraction with unit", NumberValue(12.345), catalog.Question{Type: catalog.TypeNumber, Unit: "m²"}, "12.35 m²"},
		{"number without unit", NumberValue(3), catalog.Question{Type: catalog.TypeNumber}, "3"},
		{"select label", StringValue("mdf"), catalog.Question{
			Type:    catalog.TypeSelect,
			Options: []catalog.Option{{Value: "mdf", Label: "MDF"}},
		}, "MDF"},
		{"select unknown value falls through", StringValue("teak"), catalog.Question{
			Type:    catalog.TypeSelect,
			Options: []catalog.Option{{Value: "mdf", Label: "MDF"}},
		}, "teak"},
		{"color passthrough", StringValue("#00FF00"), catalog.Question{Type: catalog.TypeColor}, "#00FF00"},
		{"text passthrough", StringValue("matte acrylic"), catalog.Question{Type: catalog.TypeText}, "matte acrylic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatAnswer(tt.v, &tt.q); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValueToken(t *testing.T) {
	if got := NumberValue(2).Token(); got != "2" {
		t.Fatalf("expected \"2\", got %q", got)
	}
	if got := NumberValue(0.5).Token(); got != "0.5" {
		t.Fatalf("expected \"0.5\", got %q", got)
	}
	if got := BoolValue(true).Token(); got != "true" {
		t.Fatalf("expected \"true\", got %q", got)
	}
	if got := StringValue("decorative").Token(); got != "decorative" {
		t.Fatalf("expected \"decorative\", got %q", got)
	}
}
