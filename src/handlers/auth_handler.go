package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"finance-tracker/src/auth"
	db "finance-tracker/src/db/sql"
	"finance-tracker/src/middleware"
	"finance-tracker/src/models"
	"finance-tracker/src/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	errEmailTaken    = errors.New("email already registered")
	errUsernameTaken = errors.New("username already taken")
)

func Register(pool *pgxpool.Pool, hasher auth.PasswordHasher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RegisterRequest
		if err := decodeJSON(w, r, &req); err != nil {
			log.Printf("ERROR: Failed to decode register request body: %v", err)
			writeError(w, decodeStatus(err), err.Error())
			return
		}

		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		req.Username = strings.TrimSpace(req.Username)

		if !util.ValidateEmail(req.Email) {
			log.Printf("ERROR: Email validation failed during registration - Email: %s", req.Email)
			writeError(w, http.StatusUnprocessableEntity, "invalid email format")
			return
		}

		if !util.ValidateUsername(req.Username) {
			log.Printf("ERROR: Username validation failed during registration - Username: %s", req.Username)
			writeError(w, http.StatusUnprocessableEntity, "username must be between 3 and 50 characters")
			return
		}

		if !util.ValidatePassword(req.Password) {
			log.Printf("ERROR: Password validation failed during registration - Username: %s", req.Username)
			writeError(w, http.StatusUnprocessableEntity, "password must be between 8 characters and 72 bytes")
			return
		}

		hashedPassword, err := hasher.Hash(req.Password)
		if err != nil {
			log.Printf("ERROR: Failed to hash password for user %s: %v", req.Username, err)
			writeInternalError(w)
			return
		}

		var user *models.User
		err = db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			taken, err := db.UserExistsByEmail(r.Context(), tx, req.Email)
			if err != nil {
				return err
			}
			if taken {
				return errEmailTaken
			}
			taken, err = db.UserExistsByUsername(r.Context(), tx, req.Username)
			if err != nil {
				return err
			}
			if taken {
				return errUsernameTaken
			}
			user, err = db.CreateUser(r.Context(), tx, req.Username, req.Email, hashedPassword)
			return err
		})
		if err != nil {
			var conflict *db.ConflictError
			switch {
			case errors.Is(err, errEmailTaken), errors.As(err, &conflict) && conflict.Constraint == "users_email_key":
				log.Printf("ERROR: Registration failed - email already exists - Email: %s", req.Email)
				writeError(w, http.StatusBadRequest, "Email already registered")
			case errors.Is(err, errUsernameTaken), errors.Is(err, db.ErrAlreadyExists):
				log.Printf("ERROR: Registration failed - username already exists - Username: %s", req.Username)
				writeError(w, http.StatusBadRequest, "Username already taken")
			default:
				log.Printf("ERROR: Failed to create user %s: %v", req.Username, err)
				writeInternalError(w)
			}
			return
		}

		log.Printf("INFO: Successful registration - User: %s, ID: %d", user.Username, user.ID)
		writeJSON(w, http.StatusCreated, user)
	}
}

// Login accepts an OAuth2 password form where username may also be an email.
func Login(pool *pgxpool.Pool, hasher auth.PasswordHasher, tokens *auth.TokenService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			log.Printf("ERROR: Failed to parse login form: %v", err)
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		login := strings.TrimSpace(r.PostFormValue("username"))
		password := r.PostFormValue("password")
		if login == "" || password == "" {
			writeError(w, http.StatusUnprocessableEntity, "username and password are required")
			return
		}

		var user *models.User
		err := db.WithTx(r.Context(), pool, func(tx pgx.Tx) error {
			var err error
			user, err = db.GetUserByUsernameOrEmail(r.Context(), tx, login)
			return err
		})
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			log.Printf("ERROR: Failed to look up user during login - Username/Email: %s: %v", login, err)
			writeInternalError(w)
			return
		}

		if user == nil || !hasher.Verify(password, user.PasswordHash) {
			log.Printf("ERROR: Invalid login attempt for username/email %s from IP %s", login, r.RemoteAddr)
			middleware.Unauthorized(w, "Incorrect username or password")
			return
		}

		token, err := tokens.Issue(user.Username)
		if err != nil {
			log.Printf("ERROR: Failed to generate token for user %s: %v", user.Username, err)
			writeInternalError(w)
			return
		}

		log.Printf("INFO: Successful login - User: %s, ID: %d", user.Username, user.ID)
		writeJSON(w, http.StatusOK, models.TokenResponse{
			AccessToken: token,
			TokenType:   "bearer",
		})
	}
}

func Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := currentUser(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}
