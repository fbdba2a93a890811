package database

import (
	"context"

	"shareit/internal/models"

	"github.com/Masterminds/squirrel"
)

var requestColumns = []string{"id", "description", "requester_id", "created"}

func (db *DB) CreateRequest(ctx context.Context, request *models.ItemRequest) error {
	query, args, err := db.sb.Insert("requests").
		Columns("description", "requester_id", "created").
		Values(request.Description, request.RequesterID, request.Created.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&request.ID); err != nil {
		return mapError(err, "request", request.ID)
	}
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	query, args, err := db.sb.Select(requestColumns...).
		From("requests").
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return nil, err
	}

	var req models.ItemRequest
	if err := db.GetContext(ctx, &req, query, args...); err != nil {
		return nil, mapError(err, "request", id)
	}
	req.Created = req.Created.UTC()
	return &req, nil
}

func (db *DB) GetRequestsByRequester(ctx context.Context, requesterID int64) ([]*models.ItemRequest, error) {
	return db.selectRequests(ctx, db.sb.Select(requestColumns...).
		From("requests").
		Where("requester_id = ?", requesterID).
		OrderBy("created DESC", "id DESC"))
}

// GetRequestsExcept lists requests of everyone but userID, newest first.
func (db *DB) GetRequestsExcept(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	return db.selectRequests(ctx, db.sb.Select(requestColumns...).
		From("requests").
		Where(squirrel.NotEq{"requester_id": userID}).
		OrderBy("created DESC", "id DESC").
		Limit(uint64(page.Limit)).
		Offset(uint64(page.Offset)))
}

func (db *DB) selectRequests(ctx context.Context, builder squirrel.SelectBuilder) ([]*models.ItemRequest, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	requests := []*models.ItemRequest{}
	if err := db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, mapError(err, "request", 0)
	}
	for _, r := range requests {
		r.Created = r.Created.UTC()
	}
	return requests, nil
}
