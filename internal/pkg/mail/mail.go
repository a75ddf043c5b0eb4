// Package mail sends security notifications to users.
package mail

import (
	"context"
	"io"
	"log/slog"
)

type Message struct {
	From     string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mail delivers a Message.
type Mail interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// Log writes messages to the structured log instead of delivering them. It
// backs local runs where no SMTP relay is configured.
type Log struct{}

func NewLog() *Log { return &Log{} }

func (*Log) Send(ctx context.Context, msg Message) error {
	slog.InfoContext(ctx, "mail not delivered, no smtp relay configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}

func (*Log) Close() error { return nil }
