package postgres

import (
	"context"

	"github.com/aquasync/backend/models"
	"github.com/aquasync/backend/repositories"
	"go.uber.org/zap"
)

// VerificationTokenRepository implements repositories.VerificationTokenRepository
type VerificationTokenRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewVerificationTokenRepository creates a new verification token repository
func NewVerificationTokenRepository(db *DB, logger *zap.Logger) repositories.VerificationTokenRepository {
	return &VerificationTokenRepository{db: db, logger: logger}
}

// Create stores a token
func (r *VerificationTokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	query := `INSERT INTO verification_tokens (identifier, token, expires) VALUES ($1, $2, $3)`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, token.Identifier, token.Token, token.Expires); err != nil {
		return translate("create verification token", err)
	}
	return nil
}

// Get retrieves a token by value
func (r *VerificationTokenRepository) Get(ctx context.Context, token string) (*models.VerificationToken, error) {
	query := `SELECT identifier, token, expires FROM verification_tokens WHERE token = $1`

	vt := &models.VerificationToken{}
	if err := GetExecutor(ctx, r.db).QueryRowContext(ctx, query, token).Scan(&vt.Identifier, &vt.Token, &vt.Expires); err != nil {
		return nil, translate("get verification token", err)
	}
	return vt, nil
}

// Delete removes a token. Deleting a missing token is not an error.
func (r *VerificationTokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM verification_tokens WHERE token = $1`, token); err != nil {
		return translate("delete verification token", err)
	}
	return nil
}
