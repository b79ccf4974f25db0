package models

type Product string

const (
	ProductAllocator  Product = "allocator"
	ProductFormsPlus  Product = "formsplus"
	ProductPremiumTax Product = "premium_tax"
	ProductMunicipal  Product = "municipal"
)

type ProductInfo struct {
	ID          Product `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
}

// Catalog is the fixed set of supported products. Order matters for the UI.
var Catalog = []ProductInfo{
	{ID: ProductAllocator, Name: "Allocator", Description: "Tax allocation, geocoding, and batch processing"},
	{ID: ProductFormsPlus, Name: "FormsPlus", Description: "Form trees, rendering, and data validation"},
	{ID: ProductPremiumTax, Name: "Premium Tax", Description: "Tax calculation, e-filing, and rate tables"},
	{ID: ProductMunicipal, Name: "Municipal", Description: "Municipal codes, jurisdictions, and rate calculation"},
}

func ValidProduct(p string) bool {
	switch Product(p) {
	case ProductAllocator, ProductFormsPlus, ProductPremiumTax, ProductMunicipal:
		return true
	}
	return false
}
