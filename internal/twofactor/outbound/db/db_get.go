package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

func (s *DB) GetUserByID(ctx context.Context, id int64) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, `
		SELECT id, email, password, full_name FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Email, &u.Password, &u.FullName)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var u entity.User
	err = s.conn.QueryRow(ctx, `
		SELECT id, email, password, full_name FROM users WHERE lower(email) = lower($1)`, email,
	).Scan(&u.ID, &u.Email, &u.Password, &u.FullName)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &u, nil
}

func (s *DB) GetTwoFactor(ctx context.Context, userID int64) (_ *entity.TwoFactor, err error) {
	ctx, span := s.startSpan(ctx, "GetTwoFactor")
	defer func() { s.endSpan(span, err) }()

	var tf entity.TwoFactor
	err = s.conn.QueryRow(ctx, `
		SELECT user_id, secret, key_version, enabled, created_at, updated_at
		FROM two_factor_auth WHERE user_id = $1`, userID,
	).Scan(&tf.UserID, &tf.Secret, &tf.KeyVersion, &tf.Enabled, &tf.CreatedAt, &tf.UpdatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &tf, nil
}

func (s *DB) CountBackupCodes(ctx context.Context, userID int64) (_ int, err error) {
	ctx, span := s.startSpan(ctx, "CountBackupCodes")
	defer func() { s.endSpan(span, err) }()

	var n int
	if err = s.conn.QueryRow(ctx, `
		SELECT count(*) FROM two_factor_backup_codes WHERE user_id = $1`, userID,
	).Scan(&n); err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

// ListAuditLogs returns the audit trail of a user, newest first.
func (s *DB) ListAuditLogs(ctx context.Context, userID int64) (_ []entity.AuditLog, err error) {
	ctx, span := s.startSpan(ctx, "ListAuditLogs")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, action, details, created_at
		FROM audit_logs WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	logs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.AuditLog, error) {
		var l entity.AuditLog
		err := row.Scan(&l.ID, &l.UserID, &l.Action, &l.Details, &l.CreatedAt)
		l.Action = l.Action.Ensure()
		return l, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return logs, nil
}

// ListLoginAttempts returns at most limit attempts of a user, newest first.
func (s *DB) ListLoginAttempts(ctx context.Context, userID int64, limit int) (_ []entity.LoginAttempt, err error) {
	ctx, span := s.startSpan(ctx, "ListLoginAttempts")
	defer func() { s.endSpan(span, err) }()

	rows, err := s.conn.Query(ctx, `
		SELECT id, user_id, ip_address, user_agent, success, failure_reason, two_factor_used, created_at
		FROM login_history WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, s.mapError(err)
	}

	attempts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.LoginAttempt, error) {
		var a entity.LoginAttempt
		err := row.Scan(&a.ID, &a.UserID, &a.IPAddress, &a.UserAgent, &a.Success, &a.FailureReason, &a.TwoFactorUsed, &a.CreatedAt)
		return a, err
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	return attempts, nil
}
