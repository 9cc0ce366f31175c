package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/drinks-api/internal/domain/drink"
)

const (
	listDrinksSQL   = `SELECT id, title, recipe FROM drinks ORDER BY id`
	getDrinkByIDSQL = `SELECT id, title, recipe FROM drinks WHERE id = $1`
	createDrinkSQL  = `INSERT INTO drinks (title, recipe) VALUES ($1, $2) RETURNING id`
	updateDrinkSQL  = `UPDATE drinks SET title = $1, recipe = $2 WHERE id = $3`
	deleteDrinkSQL  = `DELETE FROM drinks WHERE id = $1`

	uniqueViolation = "23505"
)

var _ drink.Repository = (*DrinkRepository)(nil)

// DrinkRepository implements drink.Repository backed by PostgreSQL.
type DrinkRepository struct {
	pool *pgxpool.Pool
}

// NewDrinkRepository returns a DrinkRepository that uses the given pool.
func NewDrinkRepository(pool *pgxpool.Pool) *DrinkRepository {
	return &DrinkRepository{pool: pool}
}

// List returns all drinks ordered by ID.
func (r *DrinkRepository) List(ctx context.Context) ([]drink.Drink, error) {
	rows, err := r.pool.Query(ctx, listDrinksSQL)
	if err != nil {
		return nil, errors.Wrap(err, "query drinks")
	}
	drinks, err := pgx.CollectRows(rows, scanDrink)
	if err != nil {
		return nil, errors.Wrap(err, "collect drinks")
	}
	return drinks, nil
}

// GetByID returns a single drink, or drink.ErrNotFound.
func (r *DrinkRepository) GetByID(ctx context.Context, id int64) (*drink.Drink, error) {
	rows, err := r.pool.Query(ctx, getDrinkByIDSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "query drink %d", id)
	}

	d, err := pgx.CollectExactlyOneRow(rows, scanDrink)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, drink.ErrNotFound
		}
		return nil, errors.Wrapf(err, "collect drink %d", id)
	}
	return &d, nil
}

// Create inserts d and sets its ID.
func (r *DrinkRepository) Create(ctx context.Context, d *drink.Drink) error {
	err := r.pool.QueryRow(ctx, createDrinkSQL, d.Title, string(drink.MarshalRecipe(d.Recipe))).Scan(&d.ID)
	if err != nil {
		return mapWriteError(err, "insert drink")
	}
	return nil
}

// Update overwrites the title and recipe of the drink with d.ID.
func (r *DrinkRepository) Update(ctx context.Context, d *drink.Drink) error {
	tag, err := r.pool.Exec(ctx, updateDrinkSQL, d.Title, string(drink.MarshalRecipe(d.Recipe)), d.ID)
	if err != nil {
		return mapWriteError(err, "update drink")
	}
	if tag.RowsAffected() == 0 {
		return drink.ErrNotFound
	}
	return nil
}

// Delete removes the drink with the given id.
func (r *DrinkRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, deleteDrinkSQL, id)
	if err != nil {
		return errors.Wrapf(err, "delete drink %d", id)
	}
	if tag.RowsAffected() == 0 {
		return drink.ErrNotFound
	}
	return nil
}

func scanDrink(row pgx.CollectableRow) (drink.Drink, error) {
	var (
		d      drink.Drink
		recipe string
	)
	if err := row.Scan(&d.ID, &d.Title, &recipe); err != nil {
		return d, err
	}
	r, err := drink.ParseRecipe([]byte(recipe))
	if err != nil {
		return d, errors.Wrapf(err, "drink %d", d.ID)
	}
	d.Recipe = r
	return d, nil
}

func mapWriteError(err error, msg string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return drink.ErrDuplicateTitle
	}
	return errors.Wrap(err, msg)
}
