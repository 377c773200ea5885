package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"finance-tracker/src/models"
)

const transactionSelect = `
	SELECT t.id, t.user_id, t.amount, t.type, t.transaction_date, t.description, t.category_id,
		t.created_at, t.updated_at,
		c.id, c.user_id, c.name, c.description, c.created_at, c.updated_at
	FROM transactions t
	LEFT JOIN categories c ON c.id = t.category_id
`

func scanTransaction(row interface{ Scan(dest ...any) error }) (*models.Transaction, error) {
	var t models.Transaction
	var (
		catID, catUserID     *int64
		catName, catDesc     *string
		catCreated, catUpdat *time.Time
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Amount, &t.Type, &t.TransactionDate, &t.Description, &t.CategoryID,
		&t.CreatedAt, &t.UpdatedAt,
		&catID, &catUserID, &catName, &catDesc, &catCreated, &catUpdat,
	)
	if err != nil {
		return nil, translate(err)
	}
	if catID != nil {
		t.Category = &models.Category{
			ID:          *catID,
			UserID:      *catUserID,
			Name:        *catName,
			Description: catDesc,
			CreatedAt:   *catCreated,
			UpdatedAt:   *catUpdat,
		}
	}
	return &t, nil
}

func CreateTransaction(ctx context.Context, q Querier, txn *models.Transaction) (*models.Transaction, error) {
	query := `
		INSERT INTO transactions (user_id, category_id, amount, type, transaction_date, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query, txn.UserID, txn.CategoryID, txn.Amount, txn.Type, txn.TransactionDate, txn.Description).
		Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", translate(err))
	}
	return GetTransactionByID(ctx, q, txn.UserID, id)
}

func GetTransactionByID(ctx context.Context, q Querier, userID, transactionID int64) (*models.Transaction, error) {
	query := transactionSelect + ` WHERE t.id = $1 AND t.user_id = $2`
	return scanTransaction(q.QueryRow(ctx, query, transactionID, userID))
}

// ListTransactions returns the owner's transactions matching filter, newest first.
func ListTransactions(ctx context.Context, q Querier, userID int64, filter models.TransactionFilter) ([]models.Transaction, error) {
	conds := []string{"t.user_id = $1"}
	args := []any{userID}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.StartDate != nil {
		add("t.transaction_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("t.transaction_date <= $%d", *filter.EndDate)
	}
	if filter.Type != nil {
		add("t.type = $%d", *filter.Type)
	}
	if filter.CategoryID != nil {
		add("t.category_id = $%d", *filter.CategoryID)
	}

	args = append(args, filter.Skip, filter.Limit)
	query := transactionSelect +
		" WHERE " + strings.Join(conds, " AND ") +
		fmt.Sprintf(" ORDER BY t.transaction_date DESC, t.id DESC OFFSET $%d LIMIT $%d", len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *t)
	}
	return transactions, rows.Err()
}

// UpdateTransaction writes every mutable column of txn, scoped to its owner.
func UpdateTransaction(ctx context.Context, q Querier, txn *models.Transaction) (*models.Transaction, error) {
	query := `
		UPDATE transactions
		SET amount = $1, type = $2, transaction_date = $3, description = $4, category_id = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING id
	`
	var id int64
	err := q.QueryRow(ctx, query, txn.Amount, txn.Type, txn.TransactionDate, txn.Description, txn.CategoryID, txn.ID, txn.UserID).
		Scan(&id)
	if err != nil {
		return nil, translate(err)
	}
	return GetTransactionByID(ctx, q, txn.UserID, id)
}

func DeleteTransaction(ctx context.Context, q Querier, userID, transactionID int64) error {
	query := `DELETE FROM transactions WHERE id = $1 AND user_id = $2`
	cmd, err := q.Exec(ctx, query, transactionID, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
