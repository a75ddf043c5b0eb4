package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/cenety/internal/pkg/clock"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/goroutine"
	"github.com/shandysiswandi/cenety/internal/pkg/hash"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/jwt"
	"github.com/shandysiswandi/cenety/internal/pkg/mfa"
	"github.com/shandysiswandi/cenety/internal/pkg/otp"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/pkg/validator"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
	"go.opentelemetry.io/otel/trace"
)

var (
	errNotAuthenticated = goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	errSetupNotFound    = goerror.NewBusiness("2FA setup not found. Please start setup again.", goerror.CodeNotFound)
	errInvalidCode      = goerror.NewBusiness("Invalid verification code", goerror.CodeUnauthorized)
	errInvalidPassword  = goerror.NewBusiness("Invalid password", goerror.CodeUnauthorized)
)

// SecurityEvent is published after an audited change to the second factor.
type SecurityEvent struct {
	ID         string
	UserID     int64
	Email      string
	Action     entity.AuditAction
	Details    map[string]string
	OccurredAt time.Time
}

type repoDB interface {
	GetUserByID(ctx context.Context, id int64) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetTwoFactor(ctx context.Context, userID int64) (*entity.TwoFactor, error)
	CountBackupCodes(ctx context.Context, userID int64) (int, error)
	ListAuditLogs(ctx context.Context, userID int64) ([]entity.AuditLog, error)
	ListLoginAttempts(ctx context.Context, userID int64, limit int) ([]entity.LoginAttempt, error)

	UpsertTwoFactor(ctx context.Context, tf entity.TwoFactor, codes []entity.BackupCode) error
	EnableTwoFactor(ctx context.Context, userID int64) error
	ClearTwoFactor(ctx context.Context, userID int64) error
	ReplaceBackupCodes(ctx context.Context, userID int64, codes []entity.BackupCode) error
	ConsumeBackupCode(ctx context.Context, userID int64, codeHash string) (bool, error)

	CreateAuditLog(ctx context.Context, in entity.AuditLog) error
	CreateLoginAttempt(ctx context.Context, in entity.LoginAttempt) error
}

type repoCache interface {
	SaveChallenge(ctx context.Context, tokenHash string, ch entity.SignInChallenge, ttl time.Duration) error
	GetChallenge(ctx context.Context, tokenHash string) (*entity.SignInChallenge, error)
	DeleteChallenge(ctx context.Context, tokenHash string) error
}

type repoMessaging interface {
	PublishSecurityEvent(ctx context.Context, msg SecurityEvent) error
}

type repoFile interface {
	UploadAuditExport(ctx context.Context, userID int64, at time.Time, data []byte) (string, error)
	PresignAuditExport(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type enforcer interface {
	Enforce(rvals ...any) (bool, error)
}

type Usecase struct {
	repoDB        repoDB
	repoCache     repoCache
	repoMessaging repoMessaging
	repoFile      repoFile
	idemp         idempotency.Idempotency
	validator     validator.Validator
	cfg           config.Config
	hmac          hash.Hash
	password      hash.Hash
	mfaEncryptor  mfa.Encryptor
	backupCode    mfa.BackupCodeGenerator
	uid           uid.NumberID
	uuid          uid.StringID
	token         uid.StringID
	totp          otp.OTP
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	enforcer      enforcer
	goroutine     *goroutine.Manager
}

type Dependency struct {
	RepoDB        repoDB
	RepoCache     repoCache
	RepoMessaging repoMessaging
	RepoFile      repoFile
	Idempotency   idempotency.Idempotency
	Validator     validator.Validator
	Config        config.Config
	HMAC          hash.Hash
	Password      hash.Hash
	MFAEncryptor  mfa.Encryptor
	BackupCode    mfa.BackupCodeGenerator
	UID           uid.NumberID
	UUID          uid.StringID
	Token         uid.StringID
	Totp          otp.OTP
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	Enforcer      enforcer
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoCache:     dep.RepoCache,
		repoMessaging: dep.RepoMessaging,
		repoFile:      dep.RepoFile,
		idemp:         dep.Idempotency,
		validator:     dep.Validator,
		cfg:           dep.Config,
		hmac:          dep.HMAC,
		password:      dep.Password,
		mfaEncryptor:  dep.MFAEncryptor,
		backupCode:    dep.BackupCode,
		uid:           dep.UID,
		uuid:          dep.UUID,
		token:         dep.Token,
		totp:          dep.Totp,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		enforcer:      dep.Enforcer,
		goroutine:     dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("twofactor.usecase").Start(ctx, name)
}

func (s *Usecase) authenticated(ctx context.Context) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil || clm.UserID == 0 {
		return nil, errNotAuthenticated
	}
	return clm, nil
}

func (s *Usecase) authenticatedAndAuthorized(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	ok, err := s.enforcer.Enforce(clm.Subject, obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}

// durationOr reads a minute based setting, falling back to def when unset.
func (s *Usecase) durationOr(key string, def time.Duration) time.Duration {
	if d := s.cfg.GetMinute(key); d > 0 {
		return d
	}
	return def
}
