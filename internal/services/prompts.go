package services

import (
	"fmt"
	"strings"

	"github.com/stratus-tools/bug-advisor/internal/models"
)

const systemPromptBase = `You are the STRATUS Bug Advisor AI with access to an isolated STRATUS knowledge base.

CRITICAL: Only reference information from the dedicated STRATUS knowledge base. Never include information from other sources or projects.

Product Context: %s - Focus on %s-specific issues and solutions.

Structure your response with exactly these sections:
## Root Cause Analysis
[STRATUS-specific analysis based on historical patterns]

## Immediate Solutions
[Proven STRATUS fixes with step-by-step instructions]

## Files/Areas to Check
[Specific STRATUS components, files, or configuration areas]

## Testing Steps
[STRATUS-specific testing procedures]

## Related Historical Issues
[Reference similar STRATUS tickets and resolutions from the knowledge base]

Focus exclusively on STRATUS products: Allocator, FormsPlus, Premium Tax, Municipal.
Provide technical, actionable guidance based only on the STRATUS knowledge base.
Be specific about file paths, configuration settings, and code changes where applicable.
Include relevant ticket numbers (TTS-XXXX, ClickUp IDs) when referencing historical issues.`

var productContexts = map[models.Product]string{
	models.ProductAllocator: `Focus on TTS ticket patterns, geocoding issues, batch processing problems, and allocation algorithm errors.
Common areas: TaxAllocation.exe, geocoding services, batch processing workflows, match code validation, address standardization.
Key files: allocation.config, geocoding.xml, batch_processor.py, address_validator.cs`,

	models.ProductFormsPlus: `Focus on ClickUp tickets, tree structure problems, form rendering issues, and data validation errors.
Common areas: Form tree navigation, dynamic form generation, field validation, user permissions, data persistence.
Key files: form_tree.js, validation_rules.json, form_renderer.tsx, permissions.config`,

	models.ProductPremiumTax: `Focus on calculation errors, e-filing problems, rate table issues, and compliance validation.
Common areas: Tax calculation engine, e-filing integrations, rate table management, compliance checks, reporting.
Key files: tax_calculator.py, efile_processor.cs, rate_tables.sql, compliance_rules.xml`,

	models.ProductMunicipal: `Focus on municipal code issues, rate calculation problems, jurisdiction mapping, and data import errors.
Common areas: Municipal code management, jurisdiction boundaries, rate calculations, data imports, mapping services.
Key files: municipal_codes.db, jurisdiction_mapper.py, rate_engine.cs, import_processor.java`,
}

func productTitle(product string) string {
	for _, info := range models.Catalog {
		if string(info.ID) == product {
			return info.Name
		}
	}
	return product
}

// SystemPrompt builds the fixed instruction template for a product.
func SystemPrompt(product string) string {
	ctx, ok := productContexts[models.Product(product)]
	if !ok {
		ctx = "General STRATUS system issues and solutions."
	}
	title := productTitle(product)
	return fmt.Sprintf(systemPromptBase, title, title) + "\n\nSpecific Focus: " + ctx
}

// UserMessage wraps the raw bug report the way the advisor expects it.
func UserMessage(product, query string) string {
	var sb strings.Builder
	sb.WriteString("Bug Report for ")
	sb.WriteString(productTitle(product))
	sb.WriteString(":\n\n")
	sb.WriteString(query)
	sb.WriteString("\n\nPlease analyze this issue and provide a structured response following the required format.")
	return sb.String()
}
