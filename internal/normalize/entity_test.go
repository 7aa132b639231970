// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

func boolPtr(b bool) *bool { return &b }

func fieldNames(e types.Entity) []string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Name
	}
	return names
}

func findField(t *testing.T, e types.Entity, name string) types.Field {
	t.Helper()
	for _, f := range e.Fields {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("field %q not found in %v", name, fieldNames(e))
	return types.Field{}
}

func TestEntityNormalizesNamesAndInjectsDefaults(t *testing.T) {
	e := Entity(RawEntity{
		Name: "purchase_order",
		Fields: []RawField{
			{Name: "order number", Type: "varchar(50)", Required: true},
			{Name: "total_amount", Type: "money"},
		},
	})

	assert.Equal(t, "PurchaseOrder", e.Name)
	assert.Equal(t, "purchase_order", e.TableName)
	assert.Equal(t, types.EntityTransaction, e.Type)
	assert.Equal(t, types.SourceManual, e.Source)
	assert.True(t, e.IsAuditable)
	assert.True(t, e.IsSoftDelete)

	// Injected id first, declared fields, audit, soft-delete.
	assert.Equal(t, []string{
		"id", "orderNumber", "totalAmount",
		"createdAt", "createdBy", "updatedAt", "updatedBy",
		"deletedAt", "deletedBy",
	}, fieldNames(e))

	id := findField(t, e, "id")
	assert.True(t, id.Constraints.PrimaryKey)
	assert.Equal(t, types.TypeUUID, id.DataType)

	orderNumber := findField(t, e, "orderNumber")
	assert.Equal(t, "order_number", orderNumber.ColumnName)
	assert.Equal(t, types.TypeString, orderNumber.DataType)
	assert.False(t, orderNumber.Constraints.Nullable)

	total := findField(t, e, "totalAmount")
	assert.Equal(t, types.TypeDecimal, total.DataType)
	assert.True(t, total.Constraints.Nullable)
}

func TestEntityExactlyOnePrimaryKey(t *testing.T) {
	t.Run("declared pk is kept", func(t *testing.T) {
		e := Entity(RawEntity{
			Name: "Customer",
			Fields: []RawField{
				{Name: "code", Type: "string", PrimaryKey: true},
			},
		})
		pks := 0
		for _, f := range e.Fields {
			if f.Constraints.PrimaryKey {
				pks++
				assert.Equal(t, "code", f.Name)
			}
		}
		assert.Equal(t, 1, pks)
	})

	t.Run("extra pks demoted to unique", func(t *testing.T) {
		e := Entity(RawEntity{
			Name: "Customer",
			Fields: []RawField{
				{Name: "code", PrimaryKey: true},
				{Name: "email", PrimaryKey: true},
			},
		})
		pks := 0
		for _, f := range e.Fields {
			if f.Constraints.PrimaryKey {
				pks++
			}
		}
		assert.Equal(t, 1, pks)
		email := findField(t, e, "email")
		assert.False(t, email.Constraints.PrimaryKey)
		assert.True(t, email.Constraints.Unique)
	})

	t.Run("no pk declared injects uuid id", func(t *testing.T) {
		e := Entity(RawEntity{Name: "Customer", Fields: []RawField{{Name: "name"}}})
		require.NotEmpty(t, e.Fields)
		assert.Equal(t, "id", e.Fields[0].Name)
		assert.True(t, e.Fields[0].Constraints.PrimaryKey)
	})
}

func TestEntityAuditFieldsNotDuplicated(t *testing.T) {
	e := Entity(RawEntity{
		Name: "Customer",
		Fields: []RawField{
			{Name: "createdAt", Type: "timestamp"},
			{Name: "name"},
		},
	})

	count := 0
	for _, f := range e.Fields {
		if f.Name == "createdAt" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	// The remaining audit fields are still injected.
	findField(t, e, "updatedAt")
	findField(t, e, "updatedBy")
	findField(t, e, "createdBy")
}

func TestEntityAuditDisabled(t *testing.T) {
	e := Entity(RawEntity{
		Name:         "ExchangeRate",
		Fields:       []RawField{{Name: "rate", Type: "decimal"}},
		IsAuditable:  boolPtr(false),
		IsSoftDelete: boolPtr(false),
	})

	assert.False(t, e.IsAuditable)
	assert.False(t, e.IsSoftDelete)
	assert.Equal(t, []string{"id", "rate"}, fieldNames(e))
}

func TestEntityEnumValuesForceEnumType(t *testing.T) {
	e := Entity(RawEntity{
		Name: "Order",
		Fields: []RawField{
			{Name: "status", Type: "string", EnumValues: []string{"draft", "placed"}},
		},
	})
	status := findField(t, e, "status")
	assert.Equal(t, types.TypeEnum, status.DataType)
	assert.Equal(t, []string{"draft", "placed"}, status.EnumValues)
}

func TestEntityDedupesFieldsCaseInsensitively(t *testing.T) {
	e := Entity(RawEntity{
		Name: "Customer",
		Fields: []RawField{
			{Name: "email"},
			{Name: "Email"},
		},
	})
	count := 0
	for _, f := range e.Fields {
		if f.Name == "email" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestEntityTypeInference(t *testing.T) {
	tests := []struct {
		name     string
		explicit string
		want     types.EntityType
	}{
		{"SalesOrder", "", types.EntityTransaction},
		{"OrderStatus", "", types.EntityTransaction}, // "order" row matches first
		{"ItemCategory", "", types.EntityLookup},
		{"Currency", "", types.EntityReference},
		{"Customer", "", types.EntityMaster},
		{"Customer", "lookup", types.EntityLookup},
		{"Anything", "junction", types.EntityJunction},
	}
	for _, tt := range tests {
		e := Entity(RawEntity{Name: tt.name, Type: tt.explicit})
		assert.Equal(t, tt.want, e.Type, "%s/%s", tt.name, tt.explicit)
	}
}

func TestFromDeclared(t *testing.T) {
	raw := FromDeclared(types.DeclaredEntity{
		Name:   "Customer",
		Fields: []string{"name:string", "email", "  credit_limit : decimal "},
	})

	assert.Equal(t, "Customer", raw.Name)
	assert.Equal(t, types.SourcePRDExplicit, raw.Source)
	require.Len(t, raw.Fields, 3)
	assert.Equal(t, "name", raw.Fields[0].Name)
	assert.Equal(t, "string", raw.Fields[0].Type)
	assert.Equal(t, "email", raw.Fields[1].Name)
	assert.Equal(t, "", raw.Fields[1].Type)
	assert.Equal(t, "credit_limit", raw.Fields[2].Name)
	assert.Equal(t, "decimal", raw.Fields[2].Type)
}

func TestFromScreens(t *testing.T) {
	screens := []types.Screen{
		{
			Name: "Order Form",
			Type: types.ScreenForm,
			FieldMappings: []types.FieldMapping{
				{FieldName: "Order Number", EntityField: "orderNumber", InputType: types.InputText, Required: true},
				{FieldName: "Total", EntityField: "total", InputType: types.InputNumber},
			},
		},
		{
			Name: "Order List",
			Type: types.ScreenList,
			FieldMappings: []types.FieldMapping{
				{FieldName: "Status", EntityField: "status", InputType: types.InputSelect},
			},
		},
		{Name: "Dashboard", Type: types.ScreenDashboard},
	}

	raws := FromScreens(screens)
	require.Len(t, raws, 1, "both Order screens collapse to one candidate; mapping-less screens contribute nothing")

	raw := raws[0]
	assert.Equal(t, "Order", raw.Name)
	assert.Equal(t, types.SourceScreenMapping, raw.Source)
	assert.InDelta(t, 0.6, raw.Confidence, 1e-9)
	require.Len(t, raw.Fields, 3)
	assert.Equal(t, "orderNumber", raw.Fields[0].Name)
	assert.True(t, raw.Fields[0].Required)
	assert.Equal(t, "decimal", raw.Fields[1].Type)
	assert.Equal(t, "enum", raw.Fields[2].Type)
}

func TestMerge(t *testing.T) {
	primary := []types.Entity{
		Entity(RawEntity{
			Name:   "Customer",
			Fields: []RawField{{Name: "name", Required: true}},
			Source: types.SourcePRDExplicit,
		}),
	}
	extra := []types.Entity{
		Entity(RawEntity{
			Name:   "customer",
			Fields: []RawField{{Name: "Name"}, {Name: "email"}},
			Source: types.SourceScreenMapping,
		}),
		Entity(RawEntity{Name: "Supplier", Source: types.SourceAIExtracted}),
	}

	merged := Merge(primary, extra)
	require.Len(t, merged, 2)

	customer := merged[0]
	assert.Equal(t, "Customer", customer.Name)
	assert.Equal(t, types.SourcePRDExplicit, customer.Source, "primary entity wins")

	// The primary "name" field is kept; only "email" is added.
	name := findField(t, customer, "name")
	assert.False(t, name.Constraints.Nullable, "primary field attributes preserved")
	findField(t, customer, "email")

	assert.Equal(t, "Supplier", merged[1].Name)

	// Inputs are not mutated.
	assert.Len(t, primary[0].Fields, len(fieldNames(primary[0])))
	for _, f := range primary[0].Fields {
		assert.NotEqual(t, "email", f.Name)
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.5, clampConfidence(0))
	assert.Equal(t, 0.5, clampConfidence(-1))
	assert.Equal(t, 1.0, clampConfidence(7))
	assert.Equal(t, 0.9, clampConfidence(0.9))
}
