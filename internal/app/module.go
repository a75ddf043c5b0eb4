package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/cenety/internal/notification"
	"github.com/shandysiswandi/cenety/internal/twofactor"
)

func (a *App) initModules() {
	if err := twofactor.New(twofactor.Dependency{
		DBConn:        a.dbConn,
		CacheConn:     a.cacheConn,
		Goroutine:     a.goroutine,
		Enforcer:      a.casbin,
		Router:        a.router,
		Idempotency:   a.idemp,
		Messaging:     a.messaging,
		Storage:       a.storage,
		Config:        a.config,
		Instrument:    a.ins,
		UID:           a.uid,
		UUID:          a.uuid,
		Token:         a.token,
		HMAC:          a.hmac,
		Password:      a.password,
		MFAEncryptor:  a.mfaEncryptor,
		BackupCode:    a.backupCode,
		Clock:         a.clock,
		Totp:          a.totp,
		Validator:     a.validator,
		JWT:           a.jwt,
		StorageBucket: a.config.GetString("storage.bucket"),
	}); err != nil {
		slog.Error("failed to init module twofactor", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Idempotency: a.idemp,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Mail:        a.mail,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}
}
