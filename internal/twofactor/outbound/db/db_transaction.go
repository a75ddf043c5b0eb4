package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

func (s *DB) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	if err := fn(tx); err != nil {
		return s.mapError(err)
	}

	return s.mapError(tx.Commit(ctx))
}

// UpsertTwoFactor stores a fresh pending setup, replacing any previous
// secret and backup codes of the account.
func (s *DB) UpsertTwoFactor(ctx context.Context, tf entity.TwoFactor, codes []entity.BackupCode) (err error) {
	ctx, span := s.startSpan(ctx, "UpsertTwoFactor")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO two_factor_auth (user_id, secret, key_version, enabled, created_at, updated_at)
			VALUES ($1, $2, $3, FALSE, now(), now())
			ON CONFLICT (user_id) DO UPDATE
			SET secret = EXCLUDED.secret,
				key_version = EXCLUDED.key_version,
				enabled = FALSE,
				updated_at = now()`,
			tf.UserID, tf.Secret, tf.KeyVersion,
		); err != nil {
			return err
		}

		return replaceBackupCodes(ctx, tx, tf.UserID, codes)
	})
}

// ClearTwoFactor empties the secret, turns 2FA off and drops every backup code.
func (s *DB) ClearTwoFactor(ctx context.Context, userID int64) (err error) {
	ctx, span := s.startSpan(ctx, "ClearTwoFactor")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE two_factor_auth
			SET secret = NULL, enabled = FALSE, updated_at = now()
			WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		_, err = tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE user_id = $1`, userID)
		return err
	})
}

// ReplaceBackupCodes swaps the whole backup code set in one transaction.
func (s *DB) ReplaceBackupCodes(ctx context.Context, userID int64, codes []entity.BackupCode) (err error) {
	ctx, span := s.startSpan(ctx, "ReplaceBackupCodes")
	defer func() { s.endSpan(span, err) }()

	return s.withTx(ctx, func(tx pgx.Tx) error {
		return replaceBackupCodes(ctx, tx, userID, codes)
	})
}

func replaceBackupCodes(ctx context.Context, tx pgx.Tx, userID int64, codes []entity.BackupCode) error {
	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_backup_codes WHERE user_id = $1`, userID); err != nil {
		return err
	}

	if len(codes) == 0 {
		return nil
	}

	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"two_factor_backup_codes"},
		[]string{"id", "user_id", "code_hash"},
		pgx.CopyFromSlice(len(codes), func(i int) ([]any, error) {
			return []any{codes[i].ID, userID, codes[i].CodeHash}, nil
		}),
	)
	return err
}
