package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/andressep95/authz-server/internal/domain"
	"github.com/andressep95/authz-server/internal/repository"
)

type tokenRepository struct {
	db *sqlx.DB
}

// NewTokenRepository creates a Postgres-backed token store. The public JWK
// and the optional user record are stored as JSONB columns.
func NewTokenRepository(db *sqlx.DB) repository.TokenRepository {
	return &tokenRepository{db: db}
}

// EnsureSchema creates the tokens table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS tokens (
			id UUID PRIMARY KEY,
			access_token TEXT NOT NULL UNIQUE,
			access_token_key JSONB NOT NULL,
			client_id TEXT NOT NULL,
			scope TEXT NOT NULL,
			token_user JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to ensure tokens schema: %w", err)
	}

	return nil
}

func (r *tokenRepository) Insert(ctx context.Context, token *domain.Token) error {
	keyJSON, err := json.Marshal(token.AccessTokenKey)
	if err != nil {
		return fmt.Errorf("failed to encode token key: %w", err)
	}

	var userJSON []byte
	if token.User != nil {
		userJSON, err = json.Marshal(token.User)
		if err != nil {
			return fmt.Errorf("failed to encode token user: %w", err)
		}
	}

	query := `
		INSERT INTO tokens (id, access_token, access_token_key, client_id, scope, token_user, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		uuid.New(), token.AccessToken, keyJSON, token.ClientID,
		domain.JoinScope(token.Scope), userJSON, time.Now())

	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

func (r *tokenRepository) FindByAccessToken(ctx context.Context, accessToken string) (*domain.Token, error) {
	query := `
		SELECT access_token, access_token_key, client_id, scope, token_user
		FROM tokens
		WHERE access_token = $1`

	var row struct {
		AccessToken    string `db:"access_token"`
		AccessTokenKey []byte `db:"access_token_key"`
		ClientID       string `db:"client_id"`
		Scope          string `db:"scope"`
		TokenUser      []byte `db:"token_user"`
	}

	err := r.db.GetContext(ctx, &row, query, accessToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}

	var key jose.JSONWebKey
	if err := json.Unmarshal(row.AccessTokenKey, &key); err != nil {
		return nil, fmt.Errorf("failed to decode token key: %w", err)
	}

	token := &domain.Token{
		AccessToken:    row.AccessToken,
		AccessTokenKey: key,
		ClientID:       row.ClientID,
		Scope:          domain.SplitScope(row.Scope),
	}

	if len(row.TokenUser) > 0 {
		var user domain.TokenUser
		if err := json.Unmarshal(row.TokenUser, &user); err != nil {
			return nil, fmt.Errorf("failed to decode token user: %w", err)
		}
		token.User = &user
	}

	return token, nil
}

func (r *tokenRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM tokens`); err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}

	return nil
}
