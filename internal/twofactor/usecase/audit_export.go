package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

const defaultExportURLTTL = 15 * time.Minute

type AuditExportOutput struct {
	URL       string
	Key       string
	ExpiresAt time.Time
}

// AuditExport writes the caller's audit trail as CSV to object storage and
// returns a presigned link. One export per user per minute.
func (s *Usecase) AuditExport(ctx context.Context) (*AuditExportOutput, error) {
	ctx, span := s.startSpan(ctx, "AuditExport")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	var out *AuditExportOutput
	key := "twofactor:audit-export:" + strconv.FormatInt(clm.UserID, 10)
	err = s.idemp.Exec(ctx, key, func(ctx context.Context) error {
		var err error
		out, err = s.exportAudit(ctx, clm.UserID)
		return err
	}, idempotency.WithLock(time.Minute), idempotency.WithTTL(time.Minute), idempotency.WithRetryFailed())

	switch {
	case errors.Is(err, idempotency.ErrInProgress), errors.Is(err, idempotency.ErrCompleted):
		return nil, goerror.NewBusiness("Audit export was just requested. Please try again in a minute.", goerror.CodeTooManyRequest)
	case err != nil:
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, gerr
		}
		slog.ErrorContext(ctx, "failed to run audit export", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.recordAudit(ctx, clm.UserID, clm.Email, entity.AuditActionAuditExported, map[string]string{"key": out.Key})

	return out, nil
}

func (s *Usecase) exportAudit(ctx context.Context, userID int64) (*AuditExportOutput, error) {
	logs, err := s.repoDB.ListAuditLogs(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list audit logs", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	data, err := auditCSV(logs)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode audit csv", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	objKey, err := s.repoFile.UploadAuditExport(ctx, userID, now, data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to upload audit export", "user_id", userID, "error", err)
		return nil, goerror.NewServer(err)
	}

	ttl := s.durationOr("modules.twofactor.export_url_ttl_minutes", defaultExportURLTTL)
	url, err := s.repoFile.PresignAuditExport(ctx, objKey, ttl)
	if err != nil {
		slog.ErrorContext(ctx, "failed to presign audit export", "user_id", userID, "key", objKey, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &AuditExportOutput{URL: url, Key: objKey, ExpiresAt: now.Add(ttl)}, nil
}

func auditCSV(logs []entity.AuditLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "action", "created_at", "details"}); err != nil {
		return nil, err
	}

	for _, l := range logs {
		keys := make([]string, 0, len(l.Details))
		for k := range l.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var details bytes.Buffer
		for i, k := range keys {
			if i > 0 {
				details.WriteByte(';')
			}
			details.WriteString(k + "=" + l.Details.GetString(k))
		}

		if err := w.Write([]string{
			strconv.FormatInt(l.ID, 10),
			l.Action.String(),
			l.CreatedAt.UTC().Format(time.RFC3339),
			details.String(),
		}); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
