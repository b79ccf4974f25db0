package services

import (
	"strings"

	"github.com/stratus-tools/bug-advisor/internal/models"
)

var requiredSections = []string{
	"Root Cause Analysis",
	"Immediate Solutions",
	"Files/Areas to Check",
	"Testing Steps",
	"Related Historical Issues",
}

var technicalIndicators = []string{
	".exe", ".config", ".xml", ".py", ".cs", ".js", ".tsx", ".json", ".sql",
	"tts-", "clickup", "batch", "geocoding", "allocation", "validation",
	"file", "directory", "database", "api", "service", "configuration",
}

var productKeywords = map[models.Product][]string{
	models.ProductAllocator:  {"geocoding", "allocation", "tts-", "match code", "address"},
	models.ProductFormsPlus:  {"form", "tree", "clickup", "validation", "field"},
	models.ProductPremiumTax: {"tax", "calculation", "e-filing", "rate", "compliance"},
	models.ProductMunicipal:  {"municipal", "jurisdiction", "code", "boundary", "mapping"},
}

// scoreConfidence estimates answer quality from structure and specificity.
// Heuristic only; clamped to [0.1, 1.0].
func scoreConfidence(response, product string) float64 {
	confidence := 0.5
	lower := strings.ToLower(response)

	found := 0
	for _, section := range requiredSections {
		if strings.Contains(response, section) {
			found++
		}
	}
	confidence += float64(found) / float64(len(requiredSections)) * 0.3

	technical := 0
	for _, ind := range technicalIndicators {
		if strings.Contains(lower, ind) {
			technical++
		}
	}
	confidence += min(float64(technical)/10, 0.2)

	switch {
	case len(response) > 1000:
		confidence += 0.1
	case len(response) > 500:
		confidence += 0.05
	}

	if keywords, ok := productKeywords[models.Product(product)]; ok {
		hits := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		confidence += min(float64(hits)/5, 0.1)
	}

	return min(max(confidence, 0.1), 1.0)
}
