package database

import (
	"context"

	"shareit/internal/models"
)

var userColumns = []string{"id", "name", "email"}

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	query, args, err := db.sb.Insert("users").
		Columns("name", "email").
		Values(user.Name, user.Email).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&user.ID); err != nil {
		return mapError(err, "user", user.ID)
	}
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query, args, err := db.sb.Select(userColumns...).
		From("users").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := db.GetContext(ctx, &user, query, args...); err != nil {
		return nil, mapError(err, "user", id)
	}
	return &user, nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	query, args, err := db.sb.Select(userColumns...).
		From("users").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	users := []*models.User{}
	if err := db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, mapError(err, "user", 0)
	}
	return users, nil
}

// UpdateUser overwrites name and email of an existing user.
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	query, args, err := db.sb.Update("users").
		Set("name", user.Name).
		Set("email", user.Email).
		Where("id = ?", user.ID).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "user", user.ID)
	}
	return requireAffected(res, "user", user.ID)
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	query, args, err := db.sb.Delete("users").Where("id = ?", id).ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "user", id)
	}
	return requireAffected(res, "user", id)
}
