package mfa

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	// BackupCodeCount is how many codes a set holds.
	BackupCodeCount = 10
	backupCodeBytes = 4
)

// BackupCodeGenerator mints a fresh set of single-use backup codes.
type BackupCodeGenerator interface {
	Generate() ([]string, error)
}

// HexBackupCode produces codes of 8 upper case hexadecimal characters, each
// from 4 bytes of crypto/rand. Codes in one set are distinct.
type HexBackupCode struct{}

func NewHexBackupCode() *HexBackupCode {
	return &HexBackupCode{}
}

func (HexBackupCode) Generate() ([]string, error) {
	codes := make([]string, 0, BackupCodeCount)
	seen := make(map[string]struct{}, BackupCodeCount)
	buf := make([]byte, backupCodeBytes)

	for len(codes) < BackupCodeCount {
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		code := strings.ToUpper(hex.EncodeToString(buf))
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}

	return codes, nil
}

// NormalizeBackupCode maps user input onto the stored form.
func NormalizeBackupCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
