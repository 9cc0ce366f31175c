package drink

import (
	"context"
	"strings"

	"github.com/go-faster/errors"
)

// Service encapsulates drink lifecycle rules on top of a Repository.
type Service struct {
	drinks Repository
}

// NewService creates a drink Service.
func NewService(drinks Repository) *Service {
	return &Service{drinks: drinks}
}

// List returns every stored drink.
func (s *Service) List(ctx context.Context) ([]Drink, error) {
	drinks, err := s.drinks.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list drinks")
	}
	return drinks, nil
}

// Create validates in and stores a new drink. Both title and recipe are
// required.
func (s *Service) Create(ctx context.Context, in Input) (*Drink, error) {
	if in.Title == nil {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if in.Recipe == nil {
		return nil, &ValidationError{Field: "recipe", Reason: "required"}
	}

	d := &Drink{
		Title:  strings.TrimSpace(*in.Title),
		Recipe: in.Recipe,
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := s.drinks.Create(ctx, d); err != nil {
		return nil, errors.Wrap(err, "create drink")
	}
	return d, nil
}

// Update applies the fields present in in to the drink with the given id.
// Absent fields keep their stored value.
func (s *Service) Update(ctx context.Context, id int64, in Input) (*Drink, error) {
	d, err := s.drinks.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get drink %d", id)
	}

	if in.Title != nil {
		d.Title = strings.TrimSpace(*in.Title)
	}
	if in.Recipe != nil {
		d.Recipe = in.Recipe
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if err := s.drinks.Update(ctx, d); err != nil {
		return nil, errors.Wrapf(err, "update drink %d", id)
	}
	return d, nil
}

// Delete removes the drink with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.drinks.GetByID(ctx, id); err != nil {
		return errors.Wrapf(err, "get drink %d", id)
	}
	if err := s.drinks.Delete(ctx, id); err != nil {
		return errors.Wrapf(err, "delete drink %d", id)
	}
	return nil
}
