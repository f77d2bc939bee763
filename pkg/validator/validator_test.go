package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testStruct struct {
	ProductID string `validate:"required"`
	Quantity  int    `validate:"gte=1,lte=100"`
}

func TestValidate_Success(t *testing.T) {
	s := testStruct{ProductID: "prod-1", Quantity: 2}
	err := Validate(s)
	assert.NoError(t, err)
}

func TestValidate_MissingRequired(t *testing.T) {
	s := testStruct{Quantity: 2}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "ProductID")
	assert.Equal(t, "is required", fields["ProductID"])
}

func TestValidate_OutOfRange(t *testing.T) {
	s := testStruct{ProductID: "prod-1", Quantity: 200}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "Quantity")
	assert.Contains(t, fields["Quantity"], "100")
}

func TestValidate_BelowMinimum(t *testing.T) {
	s := testStruct{ProductID: "prod-1", Quantity: 0}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Quantity"], "greater than or equal to 1")
}

func TestValidate_MultipleErrors(t *testing.T) {
	s := testStruct{} // missing ProductID, zero Quantity
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "ProductID")
	assert.Contains(t, fields, "Quantity")
}

func TestValidationError_ErrorString(t *testing.T) {
	s := testStruct{}
	err := Validate(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'ProductID'")
	assert.Contains(t, err.Error(), "is required")
}

type minMaxStruct struct {
	Short string `validate:"min=3"`
	Long  string `validate:"max=5"`
}

func TestValidate_MinMax(t *testing.T) {
	s := minMaxStruct{Short: "ab", Long: "toolongstring"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Short"], "at least 3")
	assert.Contains(t, fields["Long"], "at most 5")
}

type urlStruct struct {
	BaseURL string `validate:"url"`
}

func TestValidate_URL(t *testing.T) {
	s := urlStruct{BaseURL: "not a url"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Equal(t, "must be a valid URL", fields["BaseURL"])
}

func TestValidate_URL_Valid(t *testing.T) {
	s := urlStruct{BaseURL: "http://localhost:5000/api"}
	err := Validate(s)
	assert.NoError(t, err)
}

type oneofStruct struct {
	Backend string `validate:"oneof=file redis memory"`
}

func TestValidate_OneOf(t *testing.T) {
	s := oneofStruct{Backend: "postgres"}
	err := Validate(s)
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["Backend"], "one of")
}

func TestValidate_OneOf_Valid(t *testing.T) {
	s := oneofStruct{Backend: "file"}
	err := Validate(s)
	assert.NoError(t, err)
}
