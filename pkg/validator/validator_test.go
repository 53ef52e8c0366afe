package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harshavardhankumar29/Hospital-Bed-Management-System/internal/model"
)

func TestBedTags(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	assert.NoError(t, v.Struct(model.CreateBedRequest{BedNumber: "1", Ward: "ICU", Type: model.BedTypeICU}))
	assert.NoError(t, v.Struct(model.CreateBedRequest{BedNumber: "1", Ward: "ICU"}))

	err := v.Struct(model.CreateBedRequest{BedNumber: "1", Ward: "ICU", Type: "Suite"})
	require.Error(t, err)
	assert.Equal(t, "type must be one of General, ICU, Emergency", Describe(err))

	err = v.Struct(model.UpdateBedStatusRequest{Status: "Closed"})
	require.Error(t, err)
	assert.Equal(t, "status must be one of Available, Occupied, Maintenance", Describe(err))
}

func TestDescribeRequiredFields(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterOn(v))

	err := v.Struct(model.AdmitRequest{})
	require.Error(t, err)
	assert.Equal(t, "name is required; age is required", Describe(err))
}
