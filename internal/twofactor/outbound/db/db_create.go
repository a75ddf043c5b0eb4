package db

import (
	"context"

	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

func (s *DB) CreateAuditLog(ctx context.Context, in entity.AuditLog) (err error) {
	ctx, span := s.startSpan(ctx, "CreateAuditLog")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO audit_logs (id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		in.ID, in.UserID, in.Action, in.Details, in.CreatedAt)
	return s.mapError(err)
}

func (s *DB) CreateLoginAttempt(ctx context.Context, in entity.LoginAttempt) (err error) {
	ctx, span := s.startSpan(ctx, "CreateLoginAttempt")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx, `
		INSERT INTO login_history (id, user_id, ip_address, user_agent, success, failure_reason, two_factor_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		in.ID, in.UserID, in.IPAddress, in.UserAgent, in.Success, in.FailureReason, in.TwoFactorUsed, in.CreatedAt)
	return s.mapError(err)
}
