package twofactor

import (
	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/cenety/internal/pkg/clock"
	"github.com/shandysiswandi/cenety/internal/pkg/config"
	"github.com/shandysiswandi/cenety/internal/pkg/goroutine"
	"github.com/shandysiswandi/cenety/internal/pkg/hash"
	"github.com/shandysiswandi/cenety/internal/pkg/idempotency"
	"github.com/shandysiswandi/cenety/internal/pkg/instrument"
	"github.com/shandysiswandi/cenety/internal/pkg/jwt"
	"github.com/shandysiswandi/cenety/internal/pkg/messaging"
	"github.com/shandysiswandi/cenety/internal/pkg/mfa"
	"github.com/shandysiswandi/cenety/internal/pkg/otp"
	"github.com/shandysiswandi/cenety/internal/pkg/router"
	"github.com/shandysiswandi/cenety/internal/pkg/storage"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/pkg/validator"
	"github.com/shandysiswandi/cenety/internal/twofactor/inbound"
	"github.com/shandysiswandi/cenety/internal/twofactor/outbound/cache"
	"github.com/shandysiswandi/cenety/internal/twofactor/outbound/db"
	"github.com/shandysiswandi/cenety/internal/twofactor/outbound/file"
	"github.com/shandysiswandi/cenety/internal/twofactor/outbound/mq"
	"github.com/shandysiswandi/cenety/internal/twofactor/usecase"
)

type Dependency struct {
	DBConn        *pgxpool.Pool              `validate:"required"`
	CacheConn     redis.UniversalClient      `validate:"required"`
	Goroutine     *goroutine.Manager         `validate:"required"`
	Enforcer      *casbin.Enforcer           `validate:"required"`
	Router        *router.Router             `validate:"required"`
	Idempotency   idempotency.Idempotency    `validate:"required"`
	Messaging     messaging.Messaging        `validate:"required"`
	Storage       storage.Storage            `validate:"required"`
	Config        config.Config              `validate:"required"`
	Instrument    instrument.Instrumentation `validate:"required"`
	UID           uid.NumberID               `validate:"required"`
	UUID          uid.StringID               `validate:"required"`
	Token         uid.StringID               `validate:"required"`
	HMAC          hash.Hash                  `validate:"required"`
	Password      hash.Hash                  `validate:"required"`
	MFAEncryptor  mfa.Encryptor              `validate:"required"`
	BackupCode    mfa.BackupCodeGenerator    `validate:"required"`
	Clock         clock.Clocker              `validate:"required"`
	Totp          otp.OTP                    `validate:"required"`
	Validator     validator.Validator        `validate:"required"`
	JWT           jwt.JWT                    `validate:"required"`
	StorageBucket string                     `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoCache:     cache.NewCache(dep.CacheConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		RepoFile:      file.NewFile(dep.Storage, dep.StorageBucket, dep.Instrument),
		Idempotency:   dep.Idempotency,
		Validator:     dep.Validator,
		Config:        dep.Config,
		HMAC:          dep.HMAC,
		Password:      dep.Password,
		MFAEncryptor:  dep.MFAEncryptor,
		BackupCode:    dep.BackupCode,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Token:         dep.Token,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		Enforcer:      dep.Enforcer,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
