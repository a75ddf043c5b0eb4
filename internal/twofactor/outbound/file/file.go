package file

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// File keeps audit exports in one bucket under audit-exports/{user}/.
type File struct {
	client storage.Storage
	bucket string
	ins    instrument.Instrumentation
}

func NewFile(client storage.Storage, bucket string, ins instrument.Instrumentation) *File {
	return &File{client: client, bucket: bucket, ins: ins}
}

func (f *File) UploadAuditExport(ctx context.Context, userID int64, at time.Time, data []byte) (_ string, err error) {
	ctx, span := f.startSpan(ctx, "UploadAuditExport")
	defer func() { f.endSpan(span, err) }()

	key := fmt.Sprintf("audit-exports/%d/%s.csv", userID, at.UTC().Format("20060102T150405Z"))
	if _, err := f.client.Put(ctx, f.bucket, key, bytes.NewReader(data), storage.PutOptions{
		Size:        int64(len(data)),
		ContentType: "text/csv",
		Metadata:    map[string]string{"user-id": fmt.Sprint(userID)},
	}); err != nil {
		return "", err
	}

	return key, nil
}

func (f *File) PresignAuditExport(ctx context.Context, key string, expiry time.Duration) (_ string, err error) {
	ctx, span := f.startSpan(ctx, "PresignAuditExport")
	defer func() { f.endSpan(span, err) }()

	return f.client.PresignGet(ctx, f.bucket, key, expiry)
}

func (f *File) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return f.ins.Tracer("twofactor.outbound.file").Start(ctx, name)
}

func (f *File) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
