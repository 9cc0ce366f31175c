package sqlite

import (
	"context"
	"database/sql"

	"github.com/go-faster/errors"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/xenking/drinks-api/internal/domain/drink"
)

var _ drink.Repository = (*DrinkRepository)(nil)

// DrinkRepository implements drink.Repository backed by SQLite.
type DrinkRepository struct {
	db *sql.DB
}

// NewDrinkRepository returns a DrinkRepository using conn.
func NewDrinkRepository(conn *sql.DB) *DrinkRepository {
	return &DrinkRepository{db: conn}
}

func (r *DrinkRepository) List(ctx context.Context) ([]drink.Drink, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, recipe FROM drinks ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query drinks")
	}
	defer rows.Close()

	drinks := []drink.Drink{}
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		drinks = append(drinks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate drinks")
	}
	return drinks, nil
}

func (r *DrinkRepository) GetByID(ctx context.Context, id int64) (*drink.Drink, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, title, recipe FROM drinks WHERE id = ?`, id)
	d, err := scanDrink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, drink.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get drink %d", id)
	}
	return &d, nil
}

func (r *DrinkRepository) Create(ctx context.Context, d *drink.Drink) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO drinks (title, recipe) VALUES (?, ?)`,
		d.Title, string(drink.MarshalRecipe(d.Recipe)),
	)
	if err != nil {
		return mapWriteError(err, "insert drink")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return errors.Wrap(err, "last insert id")
	}
	d.ID = id
	return nil
}

func (r *DrinkRepository) Update(ctx context.Context, d *drink.Drink) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE drinks SET title = ?, recipe = ? WHERE id = ?`,
		d.Title, string(drink.MarshalRecipe(d.Recipe)), d.ID,
	)
	if err != nil {
		return mapWriteError(err, "update drink")
	}
	return requireAffected(res)
}

func (r *DrinkRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM drinks WHERE id = ?`, id)
	if err != nil {
		return errors.Wrapf(err, "delete drink %d", id)
	}
	return requireAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDrink(s scanner) (drink.Drink, error) {
	var (
		d      drink.Drink
		recipe string
	)
	if err := s.Scan(&d.ID, &d.Title, &recipe); err != nil {
		return d, err
	}
	rec, err := drink.ParseRecipe([]byte(recipe))
	if err != nil {
		return d, errors.Wrapf(err, "drink %d", d.ID)
	}
	d.Recipe = rec
	return d, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return drink.ErrNotFound
	}
	return nil
}

func mapWriteError(err error, msg string) error {
	var sErr *msqlite.Error
	if errors.As(err, &sErr) && sErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return drink.ErrDuplicateTitle
	}
	return errors.Wrap(err, msg)
}
