package customer

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a requested customer does not exist.
	ErrNotFound = errors.New("customer not found")
	// ErrNameRequired is returned when a customer is saved without a name.
	ErrNameRequired = errors.New("customer name is required")
)

// Tier classifies a customer and selects the discount and tax schedule
// applied to their orders.
type Tier string

const (
	TierStandard Tier = "STANDARD"
	TierPremium  Tier = "PREMIUM"
	TierVIP      Tier = "VIP"
)

// Tiers lists every known tier in display order.
var Tiers = []Tier{TierStandard, TierPremium, TierVIP}

// ParseTier converts a stored customer type into a Tier. Matching is exact:
// empty, unrecognized or differently cased values fall back to TierStandard.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPremium:
		return TierPremium
	case TierVIP:
		return TierVIP
	default:
		return TierStandard
	}
}

// Customer is a party that places orders.
type Customer struct {
	ID      int64
	Name    string
	Email   string
	Phone   string
	Address string
	Tier    Tier
}

// Validate checks the fields required before a customer is persisted.
func (c *Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// Normalize trims free-text fields and resolves the tier. Tier input is
// case-insensitive here so that what gets stored is always a canonical
// literal.
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.Tier = ParseTier(strings.ToUpper(strings.TrimSpace(string(c.Tier))))
}

// Repository defines persistence operations for customers.
type Repository interface {
	List(ctx context.Context) ([]Customer, error)
	// Search returns customers whose name contains query, ignoring case.
	Search(ctx context.Context, query string) ([]Customer, error)
	GetByID(ctx context.Context, id int64) (*Customer, error)
	// Create assigns the next sequential identifier to c and stores it.
	Create(ctx context.Context, c *Customer) error
	Update(ctx context.Context, c *Customer) error
	// Delete removes the customer. Orders referencing it are left untouched.
	Delete(ctx context.Context, id int64) error
}
