// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/AgenticAITest/prd-to-tasks-sub001/pkg/types"
)

// dataTypeTable maps free-text type tokens, lower-cased, to the closed
// DataType set. Sourced from the SQL and model vocabularies the pipeline
// encounters in PRDs and AI responses.
var dataTypeTable = map[string]types.DataType{
	"string":   types.TypeString,
	"varchar":  types.TypeString,
	"char":     types.TypeString,
	"nvarchar": types.TypeString,
	"email":    types.TypeString,
	"url":      types.TypeString,
	"phone":    types.TypeString,

	"text":       types.TypeText,
	"longtext":   types.TypeText,
	"mediumtext": types.TypeText,
	"clob":       types.TypeText,
	"richtext":   types.TypeText,

	"int":      types.TypeInteger,
	"integer":  types.TypeInteger,
	"bigint":   types.TypeInteger,
	"smallint": types.TypeInteger,
	"serial":   types.TypeInteger,
	"long":     types.TypeInteger,
	"quantity": types.TypeInteger,

	"decimal":  types.TypeDecimal,
	"numeric":  types.TypeDecimal,
	"float":    types.TypeDecimal,
	"double":   types.TypeDecimal,
	"real":     types.TypeDecimal,
	"money":    types.TypeDecimal,
	"currency": types.TypeDecimal,
	"amount":   types.TypeDecimal,
	"number":   types.TypeDecimal,

	"bool":    types.TypeBoolean,
	"boolean": types.TypeBoolean,
	"bit":     types.TypeBoolean,
	"flag":    types.TypeBoolean,

	"date": types.TypeDate,

	"datetime":    types.TypeDateTime,
	"timestamp":   types.TypeDateTime,
	"timestamptz": types.TypeDateTime,
	"time":        types.TypeDateTime,

	"uuid": types.TypeUUID,
	"guid": types.TypeUUID,

	"json":  types.TypeJSON,
	"jsonb": types.TypeJSON,
	"map":   types.TypeJSON,
	"array": types.TypeJSON,

	"enum":   types.TypeEnum,
	"status": types.TypeEnum,
	"select": types.TypeEnum,
}

// NormalizeDataType maps a free-text type token to the closed DataType
// set. Matching is case-insensitive and ignores a parenthesized size
// suffix ("varchar(255)"). Unrecognized tokens map to TypeString; the
// function never fails.
func NormalizeDataType(raw string) types.DataType {
	token := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(token, '('); i >= 0 {
		token = token[:i]
	}
	if dt, ok := dataTypeTable[token]; ok {
		return dt
	}
	return types.TypeString
}

// inputTypeTable maps loose screen-widget tokens to InputType.
var inputTypeTable = map[string]types.InputType{
	"text":     types.InputText,
	"string":   types.InputText,
	"number":   types.InputNumber,
	"numeric":  types.InputNumber,
	"int":      types.InputNumber,
	"integer":  types.InputNumber,
	"decimal":  types.InputNumber,
	"currency": types.InputNumber,
	"date":     types.InputDate,
	"datetime": types.InputDate,
	"select":   types.InputSelect,
	"dropdown": types.InputSelect,
	"enum":     types.InputSelect,
	"lookup":   types.InputSelect,
	"checkbox": types.InputCheckbox,
	"bool":     types.InputCheckbox,
	"boolean":  types.InputCheckbox,
	"textarea": types.InputTextarea,
	"memo":     types.InputTextarea,
	"file":     types.InputFile,
	"upload":   types.InputFile,
	"image":    types.InputFile,
}

// NormalizeInputType maps a free-text widget token to the InputType set,
// defaulting to InputText.
func NormalizeInputType(raw string) types.InputType {
	token := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexByte(token, '('); i >= 0 {
		token = token[:i]
	}
	if it, ok := inputTypeTable[token]; ok {
		return it
	}
	return types.InputText
}
