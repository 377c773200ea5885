package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	db "finance-tracker/src/db/sql"
	"finance-tracker/src/models"
	"finance-tracker/src/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultTransactionLimit = 100
	maxTransactionLimit     = 1000
)

// parseTransactionFilter reads the listing query parameters.
func parseTransactionFilter(q url.Values) (models.TransactionFilter, error) {
	filter := models.TransactionFilter{Limit: defaultTransactionLimit}

	if raw := q.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return filter, fmt.Errorf("skip must be a non-negative integer")
		}
		filter.Skip = skip
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxTransactionLimit {
			return filter, fmt.Errorf("limit must be between 1 and %d", maxTransactionLimit)
		}
		filter.Limit = limit
	}

	if raw := q.Get("start_date"); raw != "" {
		start, err := models.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("start_date: %w", err)
		}
		filter.StartDate = &start
	}

	if raw := q.Get("end_date"); raw != "" {
		end, err := models.ParseTimestamp(raw)
		if err != nil {
			return filter, fmt.Errorf("end_date: %w", err)
		}
		filter.EndDate = &end
	}

	if raw := q.Get("transaction_type"); raw != "" {
		t := models.TransactionType(raw)
		if !t.Valid() {
			return filter, fmt.Errorf("transaction_type must be income or expense")
		}
		filter.Type = &t
	}

	if raw := q.Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("category_id must be an integer")
		}
		filter.CategoryID = &id
	}

	return filter, nil
}

// checkCategory confirms categoryID belongs to the caller.
func checkCategory(r *http.Request, tx pgx.Tx, userID int64, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := db.GetCategoryByID(r.Context(), tx, userID, *categoryID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return errCategoryNotFound
		}
		return err
	}
	return nil
}

func writeTransactionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errCategoryNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, errTransactionNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Transaction not found")
	default:
		writeInternalError(w)
	}
}

func ListTransactions(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		filter, err := parseTransactionFilter(r.URL.Query())
		if err != nil {
			log.Printf("ERROR: Invalid transaction filter for user %d: %v", user.ID, err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var transactions []models.Transaction
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			transactions, err = db.ListTransactions(r.Context(), tx, user.ID, filter)
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to list transactions for user %d: %v", user.ID, err)
			writeInternalError(w)
			return
		}

		writeJSON(w, http.StatusOK, transactions)
	}
}

func GetTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var txn *models.Transaction
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			txn, err = db.GetTransactionByID(r.Context(), tx, user.ID, id)
			return err
		})
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to get transaction %d for user %d: %v", id, user.ID, err)
			}
			writeTransactionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, txn)
	}
}

func CreateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req models.TransactionCreate
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode transaction body for user %d: %v", user.ID, err)
			writeError(w, decodeStatus(err), err.Error())
			return
		}

		if err := util.ValidateTransactionCreate(req); err != nil {
			log.Printf("ERROR: Transaction validation failed for user %d: %v", user.ID, err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		txnDate := time.Now().UTC()
		if req.TransactionDate != nil {
			txnDate = req.TransactionDate.Time
		}

		var created *models.Transaction
		err := db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			if err := checkCategory(r, tx, user.ID, req.CategoryID); err != nil {
				return err
			}
			var err error
			created, err = db.CreateTransaction(r.Context(), tx, &models.Transaction{
				UserID:          user.ID,
				Amount:          req.Amount,
				Type:            req.Type,
				TransactionDate: txnDate,
				Description:     req.Description,
				CategoryID:      req.CategoryID,
			})
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to create transaction for user %d: %v", user.ID, err)
			writeTransactionError(w, err)
			return
		}

		log.Printf("INFO: Created transaction %d for user %d", created.ID, user.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var req models.TransactionUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode transaction update for user %d: %v", user.ID, err)
			writeError(w, decodeStatus(err), err.Error())
			return
		}

		if err := util.ValidateTransactionUpdate(req); err != nil {
			log.Printf("ERROR: Transaction update validation failed for user %d: %v", user.ID, err)
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var updated *models.Transaction
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			txn, err := db.GetTransactionByID(r.Context(), tx, user.ID, id)
			if err != nil {
				if errors.Is(err, db.ErrNotFound) {
					return errTransactionNotFound
				}
				return err
			}
			if req.CategoryID.Set {
				if err := checkCategory(r, tx, user.ID, req.CategoryID.Ptr()); err != nil {
					return err
				}
			}
			req.Apply(txn)
			updated, err = db.UpdateTransaction(r.Context(), tx, txn)
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to update transaction %d for user %d: %v", id, user.ID, err)
			writeTransactionError(w, err)
			return
		}

		log.Printf("INFO: Updated transaction %d for user %d", id, user.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

func DeleteTransaction(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "transaction_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			if _, err := db.GetTransactionByID(r.Context(), tx, user.ID, id); err != nil {
				return err
			}
			return db.DeleteTransaction(r.Context(), tx, user.ID, id)
		})
		if err != nil {
			log.Printf("ERROR: Failed to delete transaction %d for user %d: %v", id, user.ID, err)
			writeTransactionError(w, err)
			return
		}

		log.Printf("INFO: Deleted transaction %d for user %d", id, user.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}
