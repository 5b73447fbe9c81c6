// Package planformat converts between raw generated plan text, the
// structured section form, and the serialized blobs kept in storage.
//
// Saved blobs come in two shapes: current entries are JSON documents
// with a section list, while entries saved by older clients are plain
// text. Decode accepts both and never fails; anything that is not a
// structured document degrades to a single-content legacy plan.
package planformat

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/isdelr/planforge-be/internal/models"
)

const (
	// Defaults substituted for fields a legacy blob cannot supply.
	DefaultBusinessType = "Unnamed Plan"
	DefaultLocation     = "Unknown Location"
)

// headingRE matches a line opening a new numbered plan section, e.g.
// "3. Market Analysis".
var headingRE = regexp.MustCompile(`^\d+\.`)

// Split cuts raw generated text into ordered sections at numbered
// headings. The heading line becomes the section title and the lines
// up to the next heading become its content.
//
// This is a best-effort heuristic over free-form model output, not a
// grammar: text with no numbered headings collapses into a single
// section titled by its first line, and blank chunks are dropped.
func Split(raw string) []models.Section {
	lines := strings.Split(raw, "\n")

	var chunks [][]string
	var current []string
	for i, line := range lines {
		// A heading on the very first line does not open a second
		// chunk; it just titles the first one.
		if i > 0 && headingRE.MatchString(strings.TrimSpace(line)) {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, line)
	}
	chunks = append(chunks, current)

	var sections []models.Section
	for _, chunk := range chunks {
		text := strings.TrimSpace(strings.Join(chunk, "\n"))
		if text == "" {
			continue
		}
		title, content, _ := strings.Cut(text, "\n")
		sections = append(sections, models.Section{
			Title:   strings.TrimSpace(title),
			Content: strings.TrimSpace(content),
		})
	}
	return sections
}

// Decode turns a serialized blob back into a StructuredPlan. It is
// total: a blob that fails strict decoding becomes a legacy plan whose
// Content is the original string, and missing metadata fields are
// filled with defaults.
func Decode(serialized string) models.StructuredPlan {
	var plan models.StructuredPlan
	if err := json.Unmarshal([]byte(serialized), &plan); err != nil {
		plan = models.StructuredPlan{Content: serialized}
	}
	applyDefaults(&plan)
	return plan
}

// DecodeStrict parses data as a structured plan document. Unlike
// Decode it reports failure, which save-time validation relies on to
// reject bare strings and other non-plan payloads.
func DecodeStrict(data []byte) (models.StructuredPlan, error) {
	var plan models.StructuredPlan
	trimmed := strings.TrimSpace(string(data))
	if !strings.HasPrefix(trimmed, "{") {
		return plan, fmt.Errorf("plan content must be a JSON object")
	}
	if err := json.Unmarshal(data, &plan); err != nil {
		return plan, err
	}
	if len(plan.Sections) == 0 && plan.Content == "" {
		return plan, fmt.Errorf("plan content has no sections and no text")
	}
	return plan, nil
}

// Encode serializes a plan for storage. Output round-trips through
// Decode without loss for any plan Encode itself produced.
func Encode(plan models.StructuredPlan) (string, error) {
	applyDefaults(&plan)
	data, err := json.Marshal(plan)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func applyDefaults(plan *models.StructuredPlan) {
	if plan.BusinessType == "" {
		plan.BusinessType = DefaultBusinessType
	}
	if plan.Location == "" {
		plan.Location = DefaultLocation
	}
	if plan.DateCreated == "" {
		plan.DateCreated = time.Now().UTC().Format(time.RFC3339)
	}
}
