package handler

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/batala/site-server-go/internal/mailer"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
)

// memAdminRepo is an in-memory AdminRepository with the same matching rules
// as the SQL implementation.
type memAdminRepo struct {
	mu     sync.Mutex
	admins map[int64]*model.Admin
	nextID int64
	now    func() time.Time
}

func newMemAdminRepo() *memAdminRepo {
	return &memAdminRepo{admins: map[int64]*model.Admin{}, nextID: 1, now: time.Now}
}

func (m *memAdminRepo) clone(a *model.Admin) *model.Admin {
	c := *a
	return &c
}

func (m *memAdminRepo) FindByID(ctx context.Context, id int64) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		return m.clone(a), nil
	}
	return nil, nil
}

func (m *memAdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.admins {
		if a.Email == email {
			return m.clone(a), nil
		}
	}
	return nil, nil
}

func (m *memAdminRepo) findByResetToken(tokenHash string) *model.Admin {
	for _, a := range m.admins {
		if a.PasswordResetToken != nil && *a.PasswordResetToken == tokenHash && a.HasPendingReset(m.now()) {
			return a
		}
	}
	return nil
}

func (m *memAdminRepo) FindByResetToken(ctx context.Context, tokenHash string) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a := m.findByResetToken(tokenHash); a != nil {
		return m.clone(a), nil
	}
	return nil, nil
}

func (m *memAdminRepo) List(ctx context.Context, role model.Role, limit, offset int) ([]model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Admin
	for id := int64(1); id < m.nextID; id++ {
		if a, ok := m.admins[id]; ok && a.Role == role {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memAdminRepo) Count(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.admins), nil
}

func (m *memAdminRepo) insert(a *model.Admin) (*model.Admin, error) {
	for _, existing := range m.admins {
		if existing.Email == a.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}
	a.ID = m.nextID
	m.nextID++
	a.CreatedAt = m.now()
	a.UpdatedAt = a.CreatedAt
	m.admins[a.ID] = a
	return m.clone(a), nil
}

func (m *memAdminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(&model.Admin{
		Email:        params.Email,
		PasswordHash: params.PasswordHash,
		Role:         params.Role,
		IsActive:     true,
	})
}

func (m *memAdminRepo) CreateInvited(ctx context.Context, params model.CreateInvitedAdminParams) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tokenHash := params.ResetToken
	expires := params.ResetTokenExpiry
	return m.insert(&model.Admin{
		Email:                params.Email,
		PasswordHash:         params.PlaceholderHash,
		Role:                 model.RoleAdmin,
		PasswordResetToken:   &tokenHash,
		PasswordResetExpires: &expires,
	})
}

func (m *memAdminRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.findByResetToken(tokenHash)
	if a == nil {
		return false, nil
	}
	a.PasswordHash = passwordHash
	a.IsActive = true
	a.PasswordResetToken = nil
	a.PasswordResetExpires = nil
	return true, nil
}

func (m *memAdminRepo) IssueResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return nil, nil
	}
	a.PasswordResetToken = &tokenHash
	a.PasswordResetExpires = &expiresAt
	return m.clone(a), nil
}

func (m *memAdminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.admins[id]; ok {
		a.PasswordHash = passwordHash
	}
	return nil
}

func (m *memAdminRepo) ToggleActive(ctx context.Context, id int64) (*model.Admin, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.admins[id]
	if !ok {
		return nil, nil
	}
	a.IsActive = !a.IsActive
	return m.clone(a), nil
}

func (m *memAdminRepo) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	return 0, nil
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "plain$" + password, nil }

func (plainHasher) Verify(hash, password string) bool {
	return strings.HasPrefix(hash, "plain$") && strings.TrimPrefix(hash, "plain$") == password
}

type memSiteRepo struct {
	mu     sync.Mutex
	record *model.SiteRecord
}

func (m *memSiteRepo) Get(ctx context.Context) (*model.SiteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return nil, nil
	}
	c := *m.record
	return &c, nil
}

func (m *memSiteRepo) Count(ctx context.Context) (int, error) {
	if m.record == nil {
		return 0, nil
	}
	return 1, nil
}

func (m *memSiteRepo) Create(ctx context.Context, meta, theme, sections types.JSONText) (*model.SiteRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = &model.SiteRecord{ID: 1, Meta: meta, Theme: theme, Sections: sections}
	return m.record, nil
}

func (m *memSiteRepo) UpdateSections(ctx context.Context, fn repository.SectionsMutator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.record == nil {
		return repository.ErrSiteNotFound
	}
	updated, err := fn(m.record.Sections)
	if err != nil {
		return err
	}
	m.record.Sections = updated
	return nil
}

type memMediaRepo struct {
	mu     sync.Mutex
	items  []model.Media
	nextID int64
}

func (m *memMediaRepo) List(ctx context.Context) ([]model.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Media, 0, len(m.items))
	for i := len(m.items) - 1; i >= 0; i-- {
		out = append(out, m.items[i])
	}
	return out, nil
}

func (m *memMediaRepo) FindByID(ctx context.Context, id int64) (*model.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, item := range m.items {
		if item.ID == id {
			c := item
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memMediaRepo) Create(ctx context.Context, params model.CreateMediaParams) (*model.Media, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	size := params.Size
	item := model.Media{
		ID:       m.nextID,
		Type:     params.Type,
		Filename: params.Filename,
		MimeType: params.MimeType,
		Size:     &size,
	}
	m.items = append(m.items, item)
	return &item, nil
}

func (m *memMediaRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, item := range m.items {
		if item.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return nil
}
