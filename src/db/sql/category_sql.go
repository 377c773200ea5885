package db

import (
	"context"

	"finance-tracker/src/models"
)

const categoryColumns = `id, user_id, name, description, created_at, updated_at`

func scanCategory(row interface{ Scan(dest ...any) error }) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func CreateCategory(ctx context.Context, q Querier, category *models.Category) (*models.Category, error) {
	query := `
		INSERT INTO categories (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING ` + categoryColumns
	return scanCategory(q.QueryRow(ctx, query, category.UserID, category.Name, category.Description))
}

func GetCategoryByID(ctx context.Context, q Querier, userID, categoryID int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1 AND user_id = $2`
	return scanCategory(q.QueryRow(ctx, query, categoryID, userID))
}

func ListCategories(ctx context.Context, q Querier, userID int64) ([]models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories WHERE user_id = $1
		ORDER BY name, id
	`
	rows, err := q.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func UpdateCategory(ctx context.Context, q Querier, category *models.Category) (*models.Category, error) {
	query := `
		UPDATE categories
		SET name = $1, description = $2, updated_at = NOW()
		WHERE id = $3 AND user_id = $4
		RETURNING ` + categoryColumns
	return scanCategory(q.QueryRow(ctx, query, category.Name, category.Description, category.ID, category.UserID))
}

func DeleteCategory(ctx context.Context, q Querier, userID, categoryID int64) error {
	query := `DELETE FROM categories WHERE id = $1 AND user_id = $2`
	cmd, err := q.Exec(ctx, query, categoryID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
