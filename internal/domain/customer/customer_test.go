package customer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "STANDARD", want: TierStandard},
		{in: "PREMIUM", want: TierPremium},
		{in: "VIP", want: TierVIP},
		{in: " vip ", want: TierStandard},
		{in: "vip", want: TierStandard},
		{in: "premium", want: TierStandard},
		{in: "", want: TierStandard},
		{in: "GOLD", want: TierStandard},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTier(tt.in))
		})
	}
}

func TestCustomer_Validate(t *testing.T) {
	c := Customer{Name: "   "}
	require.ErrorIs(t, c.Validate(), ErrNameRequired)

	c.Name = "Jane Smith"
	require.NoError(t, c.Validate())
}

func TestCustomer_Normalize(t *testing.T) {
	c := Customer{
		Name:  "  Bob Johnson ",
		Email: " bob.j@email.com",
		Tier:  "unknown",
	}
	c.Normalize()

	assert.Equal(t, "Bob Johnson", c.Name)
	assert.Equal(t, "bob.j@email.com", c.Email)
	assert.Equal(t, TierStandard, c.Tier)
}

func TestCustomer_NormalizeTierInput(t *testing.T) {
	for in, want := range map[string]Tier{
		" vip ":   TierVIP,
		"Premium": TierPremium,
		"":        TierStandard,
		"gold":    TierStandard,
	} {
		c := Customer{Name: "Alice Williams", Tier: Tier(in)}
		c.Normalize()
		assert.Equal(t, want, c.Tier, "input %q", in)
	}
}
