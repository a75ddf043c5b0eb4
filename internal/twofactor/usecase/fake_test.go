package usecase

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	libJWT "github.com/golang-jwt/jwt/v5"
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
	"github.com/shandysiswandi/cenety/internal/pkg/pgxcasbin"
	"github.com/shandysiswandi/cenety/internal/pkg/uid"
	"github.com/shandysiswandi/cenety/internal/pkg/validator"
	"github.com/shandysiswandi/cenety/internal/twofactor/entity"
)

const (
	testPassword = "correct horse battery staple"
	testAdminID  = int64(900)
)

type fakeDB struct {
	mu       sync.Mutex
	users    map[int64]entity.User
	tfs      map[int64]entity.TwoFactor
	codes    map[int64]map[string]struct{}
	audits   []entity.AuditLog
	attempts []entity.LoginAttempt
	failGet  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users: map[int64]entity.User{},
		tfs:   map[int64]entity.TwoFactor{},
		codes: map[int64]map[string]struct{}{},
	}
}

func (f *fakeDB) GetUserByID(_ context.Context, id int64) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &u, nil
}

func (f *fakeDB) GetUserByEmail(_ context.Context, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, goerror.ErrNotFound
}

func (f *fakeDB) GetTwoFactor(_ context.Context, userID int64) (*entity.TwoFactor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	tf, ok := f.tfs[userID]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &tf, nil
}

func (f *fakeDB) CountBackupCodes(_ context.Context, userID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.codes[userID]), nil
}

func (f *fakeDB) ListAuditLogs(_ context.Context, userID int64) ([]entity.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.AuditLog
	for _, a := range f.audits {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeDB) ListLoginAttempts(_ context.Context, userID int64, limit int) ([]entity.LoginAttempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.LoginAttempt
	for i := len(f.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		if f.attempts[i].UserID == userID {
			out = append(out, f.attempts[i])
		}
	}
	return out, nil
}

func (f *fakeDB) UpsertTwoFactor(_ context.Context, tf entity.TwoFactor, codes []entity.BackupCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tf.Enabled = false
	f.tfs[tf.UserID] = tf
	f.setCodes(tf.UserID, codes)
	return nil
}

func (f *fakeDB) EnableTwoFactor(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tf, ok := f.tfs[userID]
	if !ok || len(tf.Secret) == 0 {
		return goerror.ErrNotFound
	}
	tf.Enabled = true
	f.tfs[userID] = tf
	return nil
}

func (f *fakeDB) ClearTwoFactor(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tf, ok := f.tfs[userID]
	if !ok {
		return goerror.ErrNotFound
	}
	tf.Secret, tf.Enabled = nil, false
	f.tfs[userID] = tf
	delete(f.codes, userID)
	return nil
}

func (f *fakeDB) ReplaceBackupCodes(_ context.Context, userID int64, codes []entity.BackupCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCodes(userID, codes)
	return nil
}

func (f *fakeDB) ConsumeBackupCode(_ context.Context, userID int64, codeHash string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.codes[userID][codeHash]; !ok {
		return false, nil
	}
	delete(f.codes[userID], codeHash)
	return true, nil
}

func (f *fakeDB) CreateAuditLog(_ context.Context, in entity.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, in)
	return nil
}

func (f *fakeDB) CreateLoginAttempt(_ context.Context, in entity.LoginAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, in)
	return nil
}

func (f *fakeDB) setCodes(userID int64, codes []entity.BackupCode) {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c.CodeHash] = struct{}{}
	}
	f.codes[userID] = set
}

// auditActions lists a user's audit actions by id. Ids are assigned before
// the background write, so id order is the order the actions happened.
func (f *fakeDB) auditActions(userID int64) []entity.AuditAction {
	f.mu.Lock()
	logs := make([]entity.AuditLog, 0, len(f.audits))
	for _, a := range f.audits {
		if a.UserID == userID {
			logs = append(logs, a)
		}
	}
	f.mu.Unlock()

	slices.SortFunc(logs, func(a, b entity.AuditLog) int { return cmp.Compare(a.ID, b.ID) })

	out := make([]entity.AuditAction, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Action)
	}
	return out
}

type fakeCache struct {
	mu         sync.Mutex
	data       map[string]entity.SignInChallenge
	failDelete error
}

func (f *fakeCache) SaveChallenge(_ context.Context, tokenHash string, ch entity.SignInChallenge, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[tokenHash] = ch
	return nil
}

func (f *fakeCache) GetChallenge(_ context.Context, tokenHash string) (*entity.SignInChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.data[tokenHash]
	if !ok {
		return nil, goerror.ErrNotFound
	}
	return &ch, nil
}

func (f *fakeCache) DeleteChallenge(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.data, tokenHash)
	return nil
}

type fakeMessaging struct {
	mu     sync.Mutex
	events []SecurityEvent
}

func (f *fakeMessaging) PublishSecurityEvent(_ context.Context, msg SecurityEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, msg)
	return nil
}

type fakeFile struct {
	objects map[string][]byte
}

func (f *fakeFile) UploadAuditExport(_ context.Context, userID int64, at time.Time, data []byte) (string, error) {
	key := "audit-exports/" + at.UTC().Format("20060102T150405Z") + ".csv"
	f.objects[key] = bytes.Clone(data)
	return key, nil
}

func (f *fakeFile) PresignAuditExport(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://files.test/" + key, nil
}

type fakeIdempotency struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeIdempotency) Exec(ctx context.Context, key string, fn func(context.Context) error, _ ...idempotency.Option) error {
	f.mu.Lock()
	if f.seen[key] {
		f.mu.Unlock()
		return idempotency.ErrCompleted
	}
	f.seen[key] = true
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		delete(f.seen, key)
		f.mu.Unlock()
		return err
	}
	return nil
}

type harness struct {
	uc    *Usecase
	db    *fakeDB
	cache *fakeCache
	mq    *fakeMessaging
	file  *fakeFile
	clock *clock.Fixed
	totp  *otp.TOTP
	gm    *goroutine.Manager
	hmac  *hash.HMACSHA256
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("validator: %v", err)
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(`
modules:
  twofactor:
    qr_size: 128
    challenge_ttl_minutes: 5
`))
	if err != nil {
		t.Fatalf("config: %v", err)
	}

	ring, err := mfa.NewStaticKeyRing(1, map[uint16][]byte{1: bytes.Repeat([]byte{7}, 32)})
	if err != nil {
		t.Fatalf("key ring: %v", err)
	}

	pw, err := hash.NewPassword(hash.AlgorithmBcrypt, 4, "")
	if err != nil {
		t.Fatalf("password hasher: %v", err)
	}
	pwHash, err := pw.Hash(testPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	clk := clock.NewFixed(time.Unix(1700000000, 0).UTC())
	tokens, err := jwt.NewHS512(jwt.Config{
		Secret: bytes.Repeat([]byte("k"), 64),
		Issuer: "cenety",
		TTL:    time.Hour,
		Clock:  clk,
		UUID:   uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	m, err := model.NewModelFromString(pgxcasbin.RBACModel)
	if err != nil {
		t.Fatalf("casbin model: %v", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		t.Fatalf("casbin enforcer: %v", err)
	}
	if _, err := enf.AddPolicy("admin", "twofactor", "reset"); err != nil {
		t.Fatalf("add policy: %v", err)
	}
	if _, err := enf.AddGroupingPolicy("900", "admin"); err != nil {
		t.Fatalf("add grouping policy: %v", err)
	}

	sf, err := uid.NewSnowflake(1)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}

	db := newFakeDB()
	db.users[1] = entity.User{ID: 1, Email: "jane@example.com", Password: string(pwHash), FullName: "Jane"}
	db.users[2] = entity.User{ID: 2, Email: "john@example.com", Password: string(pwHash), FullName: "John"}
	db.users[testAdminID] = entity.User{ID: testAdminID, Email: "admin@example.com", Password: string(pwHash)}

	h := &harness{
		db:    db,
		cache: &fakeCache{data: map[string]entity.SignInChallenge{}},
		mq:    &fakeMessaging{},
		file:  &fakeFile{objects: map[string][]byte{}},
		clock: clk,
		totp:  otp.NewTOTP("Cenety", otp.DefaultWindow),
		gm:    goroutine.NewManager(8),
		hmac:  hash.NewHMACSHA256("test-hmac"),
	}

	h.uc = New(Dependency{
		RepoDB:        h.db,
		RepoCache:     h.cache,
		RepoMessaging: h.mq,
		RepoFile:      h.file,
		Idempotency:   &fakeIdempotency{seen: map[string]bool{}},
		Validator:     v,
		Config:        cfg,
		HMAC:          h.hmac,
		Password:      pw,
		MFAEncryptor:  mfa.NewAESGCM(ring),
		BackupCode:    mfa.NewHexBackupCode(),
		UID:           sf,
		UUID:          uid.NewUUID(),
		Token:         uid.NewToken(32),
		Totp:          h.totp,
		Clock:         clk,
		JWT:           tokens,
		Instrument:    instrument.NewNoop(),
		Enforcer:      enf,
		Goroutine:     h.gm,
	})

	return h
}

// as returns a context authenticated as the given user.
func (h *harness) as(userID int64) context.Context {
	u := h.db.users[userID]
	return jwt.SetAuth(context.Background(), jwt.Claims{
		RegisteredClaims: libJWT.RegisteredClaims{Subject: strconv.FormatInt(userID, 10)},
		UserID:           userID,
		Email:            u.Email,
	})
}

// flush waits for background audit work. The harness cannot start new
// background work afterwards.
func (h *harness) flush(t *testing.T) {
	t.Helper()
	if err := h.gm.Wait(); err != nil {
		t.Fatalf("background work failed: %v", err)
	}
}

// enroll runs setup and enable for a user and returns the setup output.
func (h *harness) enroll(t *testing.T, userID int64) *SetupOutput {
	t.Helper()

	ctx := h.as(userID)
	out, err := h.uc.Setup(ctx)
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	code, err := h.totp.GenerateCode(out.Secret, h.clock.Now())
	if err != nil {
		t.Fatalf("GenerateCode() error = %v", err)
	}
	if err := h.uc.Enable(ctx, EnableInput{Code: code}); err != nil {
		t.Fatalf("Enable() error = %v", err)
	}

	return out
}

func assertBusiness(t *testing.T, err error, msg string, code goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("error = %v, want goerror %q", err, msg)
	}
	if gerr.Msg() != msg || gerr.Code() != code {
		t.Fatalf("error = (%q, %s), want (%q, %s)", gerr.Msg(), gerr.Code(), msg, code)
	}
}
