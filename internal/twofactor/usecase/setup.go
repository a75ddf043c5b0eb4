package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/cenety/internal/pkg/goerror"
	"github.com/shandysiswandi/cenety/internal/pkg/mfa"
	"github.com/shandysiswandi/cenety/internal/pkg/otp"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

const defaultQRSize = 256

type SetupOutput struct {
	Secret      string
	URI         string
	QRCode      string
	BackupCodes []string
}

// Setup starts (or restarts) enrollment. The new secret and backup codes
// replace whatever was stored before and 2FA stays off until Enable.
func (s *Usecase) Setup(ctx context.Context) (*SetupOutput, error) {
	ctx, span := s.startSpan(ctx, "Setup")
	defer span.End()

	clm, err := s.authenticated(ctx)
	if err != nil {
		return nil, err
	}

	secret, uri, err := s.totp.Generate(clm.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	size := s.cfg.GetInt("modules.twofactor.qr_size")
	if size <= 0 {
		size = defaultQRSize
	}
	qr, err := otp.QRCode(uri, size)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render qr code", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	sealed, keyVersion, err := s.sealSecret(ctx, clm.UserID, secret)
	if err != nil {
		return nil, err
	}

	plain, hashed, err := s.newBackupCodes(ctx, clm.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.repoDB.UpsertTwoFactor(ctx, entity.TwoFactor{
		UserID:     clm.UserID,
		Secret:     sealed,
		KeyVersion: keyVersion,
	}, hashed); err != nil {
		slog.ErrorContext(ctx, "failed to repo upsert two factor", "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &SetupOutput{
		Secret:      secret,
		URI:         uri,
		QRCode:      qr,
		BackupCodes: plain,
	}, nil
}

func (s *Usecase) sealSecret(ctx context.Context, userID int64, secret string) ([]byte, int16, error) {
	sealed, err := s.mfaEncryptor.Encrypt([]byte(secret), mfa.Scope{UserID: userID, Purpose: mfa.PurposeOTPSeed})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "user_id", userID, "error", err)
		return nil, 0, goerror.NewServer(err)
	}

	version, err := mfa.KeyVersion(sealed)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read key version", "user_id", userID, "error", err)
		return nil, 0, goerror.NewServer(err)
	}

	return sealed, int16(version), nil
}

func (s *Usecase) openSecret(ctx context.Context, tf *entity.TwoFactor) (string, error) {
	secret, err := s.mfaEncryptor.Decrypt(tf.Secret, mfa.Scope{UserID: tf.UserID, Purpose: mfa.PurposeOTPSeed})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "user_id", tf.UserID, "key_version", tf.KeyVersion, "error", err)
		return "", goerror.NewServer(err)
	}
	return string(secret), nil
}

// newBackupCodes returns the codes to show once and the rows to store.
func (s *Usecase) newBackupCodes(ctx context.Context, userID int64) ([]string, []entity.BackupCode, error) {
	plain, err := s.backupCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate backup codes", "user_id", userID, "error", err)
		return nil, nil, goerror.NewServer(err)
	}

	rows := make([]entity.BackupCode, 0, len(plain))
	for _, code := range plain {
		h, err := s.hmac.Hash(mfa.NormalizeBackupCode(code))
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash backup code", "user_id", userID, "error", err)
			return nil, nil, goerror.NewServer(err)
		}
		rows = append(rows, entity.BackupCode{ID: s.uid.Generate(), UserID: userID, CodeHash: string(h)})
	}

	return plain, rows, nil
}
