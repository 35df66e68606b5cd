package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/existflow/chantier/internal/logger"
	"github.com/existflow/chantier/internal/model"
	"github.com/existflow/chantier/internal/sqlstore"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string     `json:"token"`
	ExpiresAt string     `json:"expiresAt"`
	User      model.User `json:"user"`
}

// Claims are carried by bearer tokens
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "invalid request")
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return fail(http.StatusBadRequest, "email and password required")
	}

	if len(req.Password) < 8 {
		return fail(http.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := model.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(c.Request().Context(), s.db.Dialect.Rebind(`
		INSERT INTO users (id, name, email, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		user.ID, user.Name, user.Email, string(hash), user.CreatedAt.Format(time.RFC3339),
	)
	if sqlstore.IsUniqueViolation(err) {
		return fail(http.StatusConflict, "email already registered")
	}
	if err != nil {
		return err
	}

	logger.Info("User registered", logger.F("email", user.Email))
	return s.respondWithToken(c, user)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fail(http.StatusBadRequest, "invalid request")
	}

	user, hash, err := s.findUser(c, "email", strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail(http.StatusUnauthorized, "invalid credentials")
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		return fail(http.StatusUnauthorized, "invalid credentials")
	}

	logger.Info("User logged in", logger.F("email", user.Email))
	return s.respondWithToken(c, user)
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	user, _, err := s.findUser(c, "id", userID(c))
	if errors.Is(err, sql.ErrNoRows) {
		return fail(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// findUser looks a user up by the id or email column
func (s *Server) findUser(c echo.Context, column, value string) (model.User, string, error) {
	var (
		user      model.User
		hash      string
		createdAt string
	)
	query := `SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`
	if column == "id" {
		query = `SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`
	}
	err := s.db.QueryRowContext(c.Request().Context(), s.db.Dialect.Rebind(query), value).
		Scan(&user.ID, &user.Name, &user.Email, &hash, &createdAt)
	if err != nil {
		return model.User{}, "", err
	}
	user.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return user, hash, nil
}

func (s *Server) respondWithToken(c echo.Context, user model.User) error {
	token, expiresAt, err := s.issueToken(user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		User:      user,
	})
}

// issueToken signs a token for user
func (s *Server) issueToken(user model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.ttl)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	return token, expiresAt, err
}

// parseToken validates signature and expiry
func (s *Server) parseToken(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
