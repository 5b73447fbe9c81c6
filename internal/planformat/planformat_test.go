package planformat

import (
	"strings"
	"testing"

	"github.com/isdelr/planforge-be/internal/models"
)

const samplePlanText = `1. Executive Summary
A bakery serving Austin with fresh sourdough.
2. Market Analysis
Austin has a growing food scene.
3. Financial Projections
Break-even within 18 months.`

func TestSplitNumberedHeadings(t *testing.T) {
	sections := Split(samplePlanText)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Title != "1. Executive Summary" {
		t.Fatalf("unexpected first title: %q", sections[0].Title)
	}
	if sections[1].Content != "Austin has a growing food scene." {
		t.Fatalf("unexpected second content: %q", sections[1].Content)
	}
	if sections[2].Title != "3. Financial Projections" {
		t.Fatalf("unexpected third title: %q", sections[2].Title)
	}
}

func TestSplitPreambleStaysInFirstChunk(t *testing.T) {
	raw := "Here is your plan.\n1. Summary\nShort.\n2. Details\nLonger."
	sections := Split(raw)
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[0].Title != "Here is your plan." {
		t.Fatalf("preamble should title the first section, got %q", sections[0].Title)
	}
}

func TestSplitNoHeadings(t *testing.T) {
	raw := "Just a paragraph of advice.\nWith a second line."
	sections := Split(raw)
	if len(sections) != 1 {
		t.Fatalf("expected a single section, got %d", len(sections))
	}
	if sections[0].Title != "Just a paragraph of advice." {
		t.Fatalf("unexpected title: %q", sections[0].Title)
	}
	if sections[0].Content != "With a second line." {
		t.Fatalf("unexpected content: %q", sections[0].Content)
	}
}

func TestSplitBlankInput(t *testing.T) {
	if sections := Split(""); len(sections) != 0 {
		t.Fatalf("expected no sections for empty input, got %+v", sections)
	}
	if sections := Split("\n\n  \n"); len(sections) != 0 {
		t.Fatalf("expected no sections for whitespace input, got %+v", sections)
	}
}

func TestSplitMultiDigitHeadings(t *testing.T) {
	raw := "9. Funding\nSeed round.\n10. Legal\nLLC formation."
	sections := Split(raw)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[1].Title != "10. Legal" {
		t.Fatalf("unexpected title: %q", sections[1].Title)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	plan := models.StructuredPlan{
		BusinessType: "bakery",
		Location:     "Austin",
		DateCreated:  "2024-05-01T10:00:00Z",
		Sections: []models.Section{
			{Title: "1. Executive Summary", Content: "Fresh bread."},
			{Title: "2. Market Analysis", Content: "Hungry city."},
		},
	}

	encoded, err := Encode(plan)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded := Decode(encoded)
	if decoded.BusinessType != plan.BusinessType || decoded.Location != plan.Location ||
		decoded.DateCreated != plan.DateCreated {
		t.Fatalf("metadata did not survive round-trip: %+v", decoded)
	}
	if len(decoded.Sections) != 2 || decoded.Sections[1].Content != "Hungry city." {
		t.Fatalf("sections did not survive round-trip: %+v", decoded.Sections)
	}
}

func TestDecodeIsTotal(t *testing.T) {
	inputs := []string{
		"",
		"not json at all",
		`"a bare json string"`,
		"[1,2,3]",
		"12345",
		"{broken",
		strings.Repeat("x", 10000),
	}
	for _, in := range inputs {
		plan := Decode(in)
		if plan.BusinessType == "" || plan.Location == "" || plan.DateCreated == "" {
			t.Fatalf("decode of %.20q left metadata empty: %+v", in, plan)
		}
	}
}

func TestDecodeLegacyFallbackKeepsContent(t *testing.T) {
	plan := Decode("my old plain-text plan")
	if plan.BusinessType != DefaultBusinessType {
		t.Fatalf("expected default business type, got %q", plan.BusinessType)
	}
	if plan.Location != DefaultLocation {
		t.Fatalf("expected default location, got %q", plan.Location)
	}
	if plan.Content != "my old plain-text plan" {
		t.Fatalf("original text must be preserved, got %q", plan.Content)
	}
	if len(plan.Sections) != 0 {
		t.Fatalf("legacy plans have no sections, got %+v", plan.Sections)
	}
}

func TestDecodeStructuredBlob(t *testing.T) {
	blob := `{"businessType":"cafe","location":"Lisbon","dateCreated":"2024-01-01T00:00:00Z","sections":[{"title":"1. Summary","content":"Coffee."}]}`
	plan := Decode(blob)
	if plan.BusinessType != "cafe" || plan.Location != "Lisbon" {
		t.Fatalf("structured blob decoded wrong: %+v", plan)
	}
	if len(plan.Sections) != 1 || plan.Sections[0].Title != "1. Summary" {
		t.Fatalf("sections decoded wrong: %+v", plan.Sections)
	}
}

func TestDecodeStrictRejectsNonPlans(t *testing.T) {
	bad := []string{
		`"just a string"`,
		"[]",
		"{}",
		"plain text",
		`{"sections":[],"content":""}`,
	}
	for _, in := range bad {
		if _, err := DecodeStrict([]byte(in)); err == nil {
			t.Fatalf("expected %q to be rejected", in)
		}
	}

	good := `{"businessType":"bakery","sections":[{"title":"1. Summary","content":"Bread."}]}`
	if _, err := DecodeStrict([]byte(good)); err != nil {
		t.Fatalf("expected structured payload to pass: %v", err)
	}
}
