package db

import (
	"context"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
)

// EnableTwoFactor flips the flag of an account that has a stored secret.
func (s *DB) EnableTwoFactor(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "EnableTwoFactor")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		UPDATE two_factor_auth
		SET enabled = TRUE, updated_at = now()
		WHERE user_id = $1 AND secret IS NOT NULL`, userID)
	if err != nil {
		return s.mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return goerror.ErrNotFound
	}

	return nil
}

// ConsumeBackupCode deletes the matching code and reports whether this call
// was the one that removed it. Two concurrent calls with the same code
// cannot both get true.
func (s *DB) ConsumeBackupCode(ctx context.Context, userID int64, codeHash string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "ConsumeBackupCode")
	defer func() { s.endSpan(span, err) }()

	tag, err := s.conn.Exec(ctx, `
		DELETE FROM two_factor_backup_codes WHERE user_id = $1 AND code_hash = $2`, userID, codeHash)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() == 1, nil
}
