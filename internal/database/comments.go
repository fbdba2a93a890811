package database

import (
	"context"

	"shareit/internal/models"

	"github.com/Masterminds/squirrel"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	query, args, err := db.sb.Insert("comments").
		Columns("text", "item_id", "author_id", "created").
		Values(comment.Text, comment.ItemID, comment.AuthorID, comment.Created.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return err
	}

	if err := db.QueryRowxContext(ctx, query, args...).Scan(&comment.ID); err != nil {
		return mapError(err, "comment", comment.ID)
	}
	return nil
}

// GetCommentsByItemIDs returns comments with author names, newest first.
func (db *DB) GetCommentsByItemIDs(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	if len(itemIDs) == 0 {
		return []*models.Comment{}, nil
	}

	query, args, err := db.sb.Select(
		"c.id", "c.text", "c.item_id", "c.author_id", "u.name AS author_name", "c.created",
	).
		From("comments c").
		Join("users u ON u.id = c.author_id").
		Where(squirrel.Eq{"c.item_id": itemIDs}).
		OrderBy("c.created DESC", "c.id DESC").
		ToSql()
	if err != nil {
		return nil, err
	}

	comments := []*models.Comment{}
	if err := db.SelectContext(ctx, &comments, query, args...); err != nil {
		return nil, mapError(err, "comment", 0)
	}
	for _, c := range comments {
		c.Created = c.Created.UTC()
	}
	return comments, nil
}
