package risk

import "sort"

// Score penalties per severity. Low-severity entries carry no penalty.
const (
	penaltyCritical = 20
	penaltyHigh     = 10
	penaltyMedium   = 5
)

// Presentation colors for the dashboard charts. These are part of the API
// contract (the frontend keys its legend off them), so they are fixed here
// rather than left to the client.
var (
	categoryColors = map[string]string{
		CategoryEquipment:   "#ef4444",
		CategoryChecklist:   "#f97316",
		CategoryMaintenance: "#eab308",
	}
	severityColors = map[string]string{
		SeverityCritical: "#dc2626",
		SeverityHigh:     "#ea580c",
		SeverityMedium:   "#ca8a04",
		SeverityLow:      "#16a34a",
	}
)

// Bucket is one slice of a grouped summary.
type Bucket struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// MonthBucket counts register entries per calendar month of their date.
type MonthBucket struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// Summary is the scored view of a risk register.
type Summary struct {
	SafetyScore int           `json:"safetyScore"`
	ByCategory  []Bucket      `json:"byCategory"`
	BySeverity  []Bucket      `json:"bySeverity"`
	ByMonth     []MonthBucket `json:"byMonth"`
}

// Score computes the 0-100 safety score and the grouped counts for a
// register. The score starts at 100 and loses 20 per critical, 10 per
// high and 5 per medium entry, floored at zero.
func Score(entries []Entry) Summary {
	score := 100
	bySeverity := map[string]int{}
	byCategory := map[string]int{}
	byMonth := map[string]int{}

	for _, e := range entries {
		bySeverity[e.Severity]++
		byCategory[e.Category]++
		if !e.Date.IsZero() {
			byMonth[e.Date.Format("2006-01")]++
		}
		switch e.Severity {
		case SeverityCritical:
			score -= penaltyCritical
		case SeverityHigh:
			score -= penaltyHigh
		case SeverityMedium:
			score -= penaltyMedium
		}
	}
	if score < 0 {
		score = 0
	}

	return Summary{
		SafetyScore: score,
		ByCategory:  buckets(byCategory, categoryOrder, categoryColors),
		BySeverity:  buckets(bySeverity, severityOrder, severityColors),
		ByMonth:     monthBuckets(byMonth),
	}
}

// Fixed output order keeps the summary deterministic regardless of map
// iteration order.
var (
	categoryOrder = []string{CategoryEquipment, CategoryChecklist, CategoryMaintenance}
	severityOrder = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}
)

func buckets(counts map[string]int, order []string, colors map[string]string) []Bucket {
	out := make([]Bucket, 0, len(order))
	for _, name := range order {
		if counts[name] == 0 {
			continue
		}
		out = append(out, Bucket{Name: name, Count: counts[name], Color: colors[name]})
	}
	return out
}

func monthBuckets(counts map[string]int) []MonthBucket {
	months := make([]string, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Strings(months)
	out := make([]MonthBucket, 0, len(months))
	for _, m := range months {
		out = append(out, MonthBucket{Month: m, Count: counts[m]})
	}
	return out
}
