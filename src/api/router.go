package api

import (
	"context"
	"errors"
	"net/http"

	"finance-tracker/src/auth"
	"finance-tracker/src/db"
	queries "finance-tracker/src/db/sql"
	"finance-tracker/src/handlers"
	"finance-tracker/src/middleware"
	"finance-tracker/src/models"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
)

// userLookup resolves token subjects through the cache before the database.
// users may be nil, in which case every lookup hits the pool.
func userLookup(pool *pgxpool.Pool, users *db.UserCache) middleware.UserLookup {
	return func(ctx context.Context, username string) (*models.User, error) {
		if users != nil {
			if user, ok := users.Get(username); ok {
				return user, nil
			}
		}
		user, err := queries.GetUserByUsername(ctx, pool, username)
		if err != nil {
			if errors.Is(err, queries.ErrNotFound) {
				return nil, middleware.ErrUserNotFound
			}
			return nil, err
		}
		if users != nil {
			users.Set(user)
		}
		return user, nil
	}
}

func NewRouter(pool *pgxpool.Pool, hasher auth.PasswordHasher, tokens *auth.TokenService, users *db.UserCache, origins []string) *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORSMiddleware(origins))

	requireUser := middleware.JWTAuthMiddleware(tokens, userLookup(pool, users))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Welcome to the Finance Tracker API"}` + "\n"))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlers.Register(pool, hasher))
		r.Post("/login", handlers.Login(pool, hasher, tokens))
		r.With(requireUser).Get("/me", handlers.Me())
	})

	// Protected routes
	r.Route("/api", func(r chi.Router) {
		r.Use(requireUser)

		// Transactions
		r.Get("/transactions", handlers.ListTransactions(pool))
		r.Post("/transactions", handlers.CreateTransaction(pool))
		r.Get("/transactions/{transaction_id}", handlers.GetTransaction(pool))
		r.Put("/transactions/{transaction_id}", handlers.UpdateTransaction(pool))
		r.Delete("/transactions/{transaction_id}", handlers.DeleteTransaction(pool))

		// Categories
		r.Get("/categories", handlers.ListCategories(pool))
		r.Post("/categories", handlers.CreateCategory(pool))
		r.Get("/categories/{category_id}", handlers.GetCategory(pool))
		r.Put("/categories/{category_id}", handlers.UpdateCategory(pool))
		r.Delete("/categories/{category_id}", handlers.DeleteCategory(pool))
	})

	return r
}
