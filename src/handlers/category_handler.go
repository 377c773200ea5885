package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	db "finance-tracker/src/db/sql"
	"finance-tracker/src/models"
	"finance-tracker/src/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func writeCategoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrAlreadyExists):
		writeError(w, http.StatusBadRequest, "Category with this name already exists")
	case errors.Is(err, errCategoryNotFound), errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "Category not found")
	default:
		writeInternalError(w)
	}
}

func ListCategories(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		var categories []models.Category
		err := db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			categories, err = db.ListCategories(r.Context(), tx, user.ID)
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to list categories for user %d: %v", user.ID, err)
			writeInternalError(w)
			return
		}

		writeJSON(w, http.StatusOK, categories)
	}
}

func GetCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "category_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var category *models.Category
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			category, err = db.GetCategoryByID(r.Context(), tx, user.ID, id)
			return err
		})
		if err != nil {
			if !errors.Is(err, db.ErrNotFound) {
				log.Printf("ERROR: Failed to get category %d for user %d: %v", id, user.ID, err)
			}
			writeCategoryError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, category)
	}
}

func CreateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		var req models.CategoryCreate
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode category body for user %d: %v", user.ID, err)
			writeError(w, decodeStatus(err), err.Error())
			return
		}
		req.Name = strings.TrimSpace(req.Name)

		if err := util.ValidateCategoryCreate(req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var created *models.Category
		err := db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			created, err = db.CreateCategory(r.Context(), tx, &models.Category{
				UserID:      user.ID,
				Name:        req.Name,
				Description: req.Description,
			})
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to create category %q for user %d: %v", req.Name, user.ID, err)
			writeCategoryError(w, err)
			return
		}

		log.Printf("INFO: Created category %d for user %d", created.ID, user.ID)
		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "category_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var req models.CategoryUpdate
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode category update for user %d: %v", user.ID, err)
			writeError(w, decodeStatus(err), err.Error())
			return
		}
		if req.Name.Set {
			req.Name.Value = strings.TrimSpace(req.Name.Value)
		}

		if err := util.ValidateCategoryUpdate(req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		var updated *models.Category
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			category, err := db.GetCategoryByID(r.Context(), tx, user.ID, id)
			if err != nil {
				return err
			}
			req.Apply(category)
			updated, err = db.UpdateCategory(r.Context(), tx, category)
			return err
		})
		if err != nil {
			log.Printf("ERROR: Failed to update category %d for user %d: %v", id, user.ID, err)
			writeCategoryError(w, err)
			return
		}

		log.Printf("INFO: Updated category %d for user %d", id, user.ID)
		writeJSON(w, http.StatusOK, updated)
	}
}

// DeleteCategory removes the category. Its transactions keep existing with
// category_id cleared.
func DeleteCategory(pool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}

		id, err := pathID(r, "category_id")
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			return db.DeleteCategory(r.Context(), tx, user.ID, id)
		})
		if err != nil {
			log.Printf("ERROR: Failed to delete category %d for user %d: %v", id, user.ID, err)
			writeCategoryError(w, err)
			return
		}

		log.Printf("INFO: Deleted category %d for user %d", id, user.ID)
		w.WriteHeader(http.StatusNoContent)
	}
}
