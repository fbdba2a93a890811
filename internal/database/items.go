package database

import (
	"context"

	"shareit/internal/models"

	"github.com/Masterminds/squirrel"
)

var itemColumns = []string{"id", "name", "description", "available", "owner_id", "request_id"}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	query, args, err := db.sb.Insert("items").
		Columns("name", "description", "available", "owner_id", "request_id").
		Values(item.Name, item.Description, item.Available, item.OwnerID, item.RequestID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return mapError(err, "item", item.ID)
	}
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	query, args, err := db.sb.Select(itemColumns...).
		From("items").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var item models.Item
	if err := db.GetContext(ctx, &item, query, args...); err != nil {
		return nil, mapError(err, "item", id)
	}
	return &item, nil
}

// UpdateItem stores name, description and availability. Owner and request
// link never change after creation.
func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	query, args, err := db.sb.Update("items").
		Set("name", item.Name).
		Set("description", item.Description).
		Set("available", item.Available).
		Where("id = ?", item.ID).
		ToSql()
	if err != nil {
		return err
	}

	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError(err, "item", item.ID)
	}
	return requireAffected(res, "item", item.ID)
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	return db.selectItems(ctx, db.sb.Select(itemColumns...).
		From("items").
		Where("owner_id = ?", ownerID).
		OrderBy("id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)))
}

// SearchItems matches the name regardless of availability, the description
// only for available items. Case-insensitive substring match.
func (db *DB) SearchItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	pattern := "%" + text + "%"
	return db.selectItems(ctx, db.sb.Select(itemColumns...).
		From("items").
		Where(squirrel.Or{
			squirrel.Expr("UPPER(name) LIKE UPPER(?)", pattern),
			squirrel.And{
				squirrel.Expr("UPPER(description) LIKE UPPER(?)", pattern),
				squirrel.Eq{"available": true},
			},
		}).
		OrderBy("id").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)))
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	if len(requestIDs) == 0 {
		return []*models.Item{}, nil
	}
	return db.selectItems(ctx, db.sb.Select(itemColumns...).
		From("items").
		Where(squirrel.Eq{"request_id": requestIDs}).
		OrderBy("id"))
}

func (db *DB) selectItems(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.Item, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	items := []*models.Item{}
	if err := db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, mapError(err, "item", 0)
	}
	return items, nil
}
