package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"ms-cinema/internal/models"

	"github.com/uptrace/bun"
)

type DB struct {
	Bun bun.IDB
}

func New(idb bun.IDB) *DB {
	return &DB{Bun: idb}
}

func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx *DB) error) error {
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, &DB{Bun: tx})
	})
}

func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func (d *DB) EmailTaken(ctx context.Context, email string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Exists(ctx)
}

func (d *DB) CreateUser(ctx context.Context, user *models.User) error {
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	return err
}

func (d *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().Model(&user).Where("id = ?", id).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DetachPurchases clears the owner of every purchase of userID and returns
// how many were touched.
func (d *DB) DetachPurchases(ctx context.Context, userID int64) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Buy)(nil)).
		Set("user_id = NULL").
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := d.Bun.NewDelete().
		Model((*models.User)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
