package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	leaseID   = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000001")
	financeID = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000002")
	rentID    = uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000003")
)

func TestNewResolver_NoEntities(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(nil)
	require.ErrorIs(t, err, ErrNoBillingEntity)
	assert.Nil(t, r)
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r, err := NewResolver([]BillingEntity{
		{ID: leaseID, Name: "iTakecare Lease"},
		{ID: financeID, Name: "iTakecare Finance", IsDefault: true},
		{ID: rentID, Name: "Rent SRL"},
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input string
		want  uuid.UUID
	}{
		{"exact", "Rent SRL", rentID},
		{"case and spaces", "  itakecare LEASE ", leaseID},
		{"empty uses default", "", financeID},
		{"unknown uses default", "Other Corp", financeID},
		{"no partial match", "Rent", financeID},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Resolve(tt.input))
		})
	}
}

func TestResolve_FirstEntityWithoutDefault(t *testing.T) {
	t.Parallel()

	r, err := NewResolver([]BillingEntity{
		{ID: rentID, Name: "Rent SRL"},
		{ID: leaseID, Name: "iTakecare Lease"},
	})
	require.NoError(t, err)

	assert.Equal(t, rentID, r.Resolve("missing"))
	assert.Equal(t, rentID, r.Default().ID)
}
