package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/mock"

	"github.com/batala/site-server-go/internal/mailer"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
)

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) admin(args mock.Arguments) (*model.Admin, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Admin), args.Error(1)
}

func (m *mockAdminRepo) FindByID(ctx context.Context, id int64) (*model.Admin, error) {
	return m.admin(m.Called(ctx, id))
}

func (m *mockAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return m.admin(m.Called(ctx, email))
}

func (m *mockAdminRepo) FindByResetToken(ctx context.Context, tokenHash string) (*model.Admin, error) {
	return m.admin(m.Called(ctx, tokenHash))
}

func (m *mockAdminRepo) List(ctx context.Context, role model.Role, limit, offset int) ([]model.Admin, error) {
	args := m.Called(ctx, role, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Admin), args.Error(1)
}

func (m *mockAdminRepo) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAdminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	return m.admin(m.Called(ctx, params))
}

func (m *mockAdminRepo) CreateInvited(ctx context.Context, params model.CreateInvitedAdminParams) (*model.Admin, error) {
	return m.admin(m.Called(ctx, params))
}

func (m *mockAdminRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (bool, error) {
	args := m.Called(ctx, tokenHash, passwordHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockAdminRepo) IssueResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) (*model.Admin, error) {
	return m.admin(m.Called(ctx, id, tokenHash, expiresAt))
}

func (m *mockAdminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

func (m *mockAdminRepo) ToggleActive(ctx context.Context, id int64) (*model.Admin, error) {
	return m.admin(m.Called(ctx, id))
}

func (m *mockAdminRepo) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// fakeSiteRepo keeps the sections document in memory and applies mutators
// the way the real repository does inside its transaction.
type fakeSiteRepo struct {
	record   *model.SiteRecord
	writes   int
	getCalls int
}

func (f *fakeSiteRepo) Get(ctx context.Context) (*model.SiteRecord, error) {
	f.getCalls++
	return f.record, nil
}

func (f *fakeSiteRepo) Count(ctx context.Context) (int, error) {
	if f.record == nil {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeSiteRepo) Create(ctx context.Context, meta, theme, sections types.JSONText) (*model.SiteRecord, error) {
	f.record = &model.SiteRecord{ID: 1, Meta: meta, Theme: theme, Sections: sections}
	return f.record, nil
}

func (f *fakeSiteRepo) UpdateSections(ctx context.Context, fn repository.SectionsMutator) error {
	if f.record == nil {
		return repository.ErrSiteNotFound
	}
	updated, err := fn(f.record.Sections)
	if err != nil {
		return err
	}
	f.record.Sections = updated
	f.writes++
	return nil
}

type mockMediaRepo struct {
	mock.Mock
}

func (m *mockMediaRepo) List(ctx context.Context) ([]model.Media, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Media), args.Error(1)
}

func (m *mockMediaRepo) FindByID(ctx context.Context, id int64) (*model.Media, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *mockMediaRepo) Create(ctx context.Context, params model.CreateMediaParams) (*model.Media, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Media), args.Error(1)
}

func (m *mockMediaRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg mailer.Message) error {
	return m.Called(ctx, msg).Error(0)
}

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Save(name string, r io.Reader) (int64, error) {
	data, _ := io.ReadAll(r)
	args := m.Called(name, string(data))
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockFileStore) Delete(name string) error {
	return m.Called(name).Error(0)
}

// plainHasher keeps tests fast; argon2 itself is covered in util.
type plainHasher struct {
	hashCalls   int
	verifyCalls int
}

func (h *plainHasher) Hash(password string) (string, error) {
	h.hashCalls++
	return "plain$" + password, nil
}

func (h *plainHasher) Verify(hash, password string) bool {
	h.verifyCalls++
	return strings.HasPrefix(hash, "plain$") && hash[len("plain$"):] == password
}
