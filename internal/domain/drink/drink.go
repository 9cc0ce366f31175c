package drink

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// MaxTitleLength is the longest title accepted, counted in runes.
const MaxTitleLength = 80

// Bounds on ingredient parts. Decimals are encoded in plain notation, so the
// exponent is limited before anything formats the value.
const (
	MaxPartsDigits   = 18
	MaxPartsExponent = 9
	MaxPartsScale    = 8
)

// Sentinel errors returned by repositories and the Service.
var (
	ErrNotFound       = errors.New("drink not found")
	ErrDuplicateTitle = errors.New("drink title already exists")
)

// ValidationError reports a field that failed validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Ingredient is a single recipe entry. Parts is the relative quantity of the
// ingredient in the drink.
type Ingredient struct {
	Name  string
	Color string
	Parts decimal.Decimal
}

// Recipe is an ordered list of ingredients.
type Recipe []Ingredient

// Validate checks that the recipe has at least one ingredient and that every
// ingredient is named and has a positive quantity.
func (r Recipe) Validate() error {
	if len(r) == 0 {
		return &ValidationError{Field: "recipe", Reason: "must contain at least one ingredient"}
	}
	for i, in := range r {
		if strings.TrimSpace(in.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("recipe[%d].name", i), Reason: "required"}
		}
		if reason := validateParts(in.Parts); reason != "" {
			return &ValidationError{Field: fmt.Sprintf("recipe[%d].parts", i), Reason: reason}
		}
	}
	return nil
}

func validateParts(p decimal.Decimal) string {
	if e := p.Exponent(); e > MaxPartsExponent || e < -MaxPartsScale {
		return "out of range"
	}
	if p.NumDigits() > MaxPartsDigits {
		return "out of range"
	}
	if !p.IsPositive() {
		return "must be greater than 0"
	}
	return ""
}

// Drink is a persisted drink record.
type Drink struct {
	ID     int64
	Title  string
	Recipe Recipe
}

// Validate checks the invariants that must hold before a drink is stored.
func (d *Drink) Validate() error {
	switch n := utf8.RuneCountInString(d.Title); {
	case n == 0:
		return &ValidationError{Field: "title", Reason: "required"}
	case n > MaxTitleLength:
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", MaxTitleLength)}
	}
	return d.Recipe.Validate()
}

// Repository defines persistence operations for drinks.
type Repository interface {
	List(ctx context.Context) ([]Drink, error)
	GetByID(ctx context.Context, id int64) (*Drink, error)
	// Create stores d and sets d.ID.
	Create(ctx context.Context, d *Drink) error
	Update(ctx context.Context, d *Drink) error
	Delete(ctx context.Context, id int64) error
}
