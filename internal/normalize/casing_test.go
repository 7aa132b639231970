// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToPascalCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"purchase_order", "PurchaseOrder"},
		{"purchase order", "PurchaseOrder"},
		{"purchase-order", "PurchaseOrder"},
		{"purchaseOrder", "PurchaseOrder"},
		{"PurchaseOrder", "PurchaseOrder"},
		{"customer", "Customer"},
		{"HTTPServer", "HTTPServer"},
		{"UUID", "UUID"},
		{"api URL", "ApiURL"},
		{"", ""},
		{"a", "A"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToPascalCase(tt.in), "input %q", tt.in)
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"customer_id", "customerId"},
		{"Customer Name", "customerName"},
		{"unitPrice", "unitPrice"},
		{"UnitPrice", "unitPrice"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCamelCase(tt.in), "input %q", tt.in)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"PurchaseOrder", "purchase_order"},
		{"purchaseOrder", "purchase_order"},
		{"purchase order", "purchase_order"},
		{"purchase_order", "purchase_order"},
		{"HTTPServer", "http_server"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnakeCase(tt.in), "input %q", tt.in)
	}
}

func TestCasingIdempotent(t *testing.T) {
	inputs := []string{"purchase_order", "Customer Name", "unitPrice", "SKU-code", "HTTPServer"}
	for _, in := range inputs {
		assert.Equal(t, ToPascalCase(in), ToPascalCase(ToPascalCase(in)), "pascal %q", in)
		assert.Equal(t, ToCamelCase(in), ToCamelCase(ToCamelCase(in)), "camel %q", in)
		assert.Equal(t, ToSnakeCase(in), ToSnakeCase(ToSnakeCase(in)), "snake %q", in)
	}
}

func TestToDisplayName(t *testing.T) {
	assert.Equal(t, "Purchase Order", ToDisplayName("purchaseOrder"))
	assert.Equal(t, "Customer", ToDisplayName("customer"))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "order-form", Slugify("Order Form"))
	assert.Equal(t, "purchase-order-list", Slugify("PurchaseOrder List"))
}
