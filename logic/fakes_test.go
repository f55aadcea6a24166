package logic

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ayushhkrr/PromptVerse/models"
	"github.com/ayushhkrr/PromptVerse/pkg"
)

// In-memory store fakes backing the logic tests.

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[uuid.UUID]*models.User{}}
}

func (s *fakeUserStore) add(u models.User) *models.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := u
	s.users[cp.ID] = &cp
	return &cp
}

func (s *fakeUserStore) Create(_ context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeUserStore) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) find(pred func(*models.User) bool) (*models.User, error) {
	for _, u := range s.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeUserStore) ByLogin(_ context.Context, login string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == login || u.Email == login })
}

func (s *fakeUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email })
}

func (s *fakeUserStore) ByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username })
}

func (s *fakeUserStore) ByGoogleID(_ context.Context, sub string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.GoogleID != "" && u.GoogleID == sub })
}

func (s *fakeUserStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "full_name":
			u.FullName = v.(string)
		case "username":
			u.Username = v.(string)
		case "password_hash":
			u.PasswordHash = v.(string)
		}
	}
	return s.ByID(ctx, id)
}

func (s *fakeUserStore) SetStatus(_ context.Context, id uuid.UUID, status models.Status) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Status = status
	return nil
}

func (s *fakeUserStore) SetRole(_ context.Context, id uuid.UUID, role models.Role) error {
	u, ok := s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (s *fakeUserStore) DeleteWithPrompts(_ context.Context, id uuid.UUID) error {
	delete(s.users, id)
	return nil
}

func (s *fakeUserStore) List(_ context.Context, page, limit int) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (s *fakeUserStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.users)), nil
}

func (s *fakeUserStore) CountByStatus(_ context.Context, status models.Status) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Status == status {
			n++
		}
	}
	return n, nil
}

func (s *fakeUserStore) CountActiveByRole(_ context.Context, role models.Role) (int64, error) {
	var n int64
	for _, u := range s.users {
		if u.Role == role && u.Status == models.StatusActive {
			n++
		}
	}
	return n, nil
}

type fakePromptStore struct {
	prompts    map[uuid.UUID]*models.Prompt
	increments map[uuid.UUID]int
}

func newFakePromptStore() *fakePromptStore {
	return &fakePromptStore{
		prompts:    map[uuid.UUID]*models.Prompt{},
		increments: map[uuid.UUID]int{},
	}
}

func (s *fakePromptStore) add(p models.Prompt) *models.Prompt {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := p
	s.prompts[cp.ID] = &cp
	return &cp
}

func (s *fakePromptStore) Create(_ context.Context, p *models.Prompt) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	s.prompts[p.ID] = &cp
	return nil
}

func (s *fakePromptStore) ByID(_ context.Context, id uuid.UUID) (*models.Prompt, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakePromptStore) ByIDs(_ context.Context, ids []uuid.UUID) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, id := range ids {
		if p, ok := s.prompts[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePromptStore) ListApproved(_ context.Context, page, limit int, tag string) ([]models.Prompt, int64, error) {
	var out []models.Prompt
	for _, p := range s.prompts {
		if p.Status == models.ModerationApproved {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, int64(len(out)), nil
}

func (s *fakePromptStore) ListByOwner(_ context.Context, owner uuid.UUID) ([]models.Prompt, error) {
	var out []models.Prompt
	for _, p := range s.prompts {
		if p.OwnerID == owner {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakePromptStore) ListAll(_ context.Context, page, limit int) ([]models.Prompt, int64, error) {
	var out []models.Prompt
	for _, p := range s.prompts {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (s *fakePromptStore) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) (*models.Prompt, error) {
	p, ok := s.prompts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "body":
			p.Body = v.(string)
		case "description":
			p.Description = v.(string)
		case "tags":
			p.Tags = v.(string)
		case "sample_input":
			p.SampleInput = v.(string)
		case "price":
			p.Price = v.(int64)
		case "type":
			p.Type = v.(models.PromptType)
		case "status":
			p.Status = v.(models.ModerationStatus)
		}
	}
	return s.ByID(ctx, id)
}

func (s *fakePromptStore) SetStatus(_ context.Context, id uuid.UUID, status models.ModerationStatus) error {
	p, ok := s.prompts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (s *fakePromptStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.prompts, id)
	return nil
}

func (s *fakePromptStore) IncrementPurchaseCount(_ context.Context, id uuid.UUID) error {
	p, ok := s.prompts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.PurchaseCount++
	s.increments[id]++
	return nil
}

func (s *fakePromptStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.prompts)), nil
}

func (s *fakePromptStore) CountByStatus(_ context.Context, status models.ModerationStatus) (int64, error) {
	var n int64
	for _, p := range s.prompts {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

type fakeOrderStore struct {
	orders []models.Order
}

func (s *fakeOrderStore) Create(_ context.Context, o *models.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for _, existing := range s.orders {
		if existing.SessionID == o.SessionID {
			return gorm.ErrDuplicatedKey
		}
	}
	s.orders = append(s.orders, *o)
	return nil
}

func (s *fakeOrderStore) ExistsBySession(_ context.Context, sessionID string) (bool, error) {
	for _, o := range s.orders {
		if o.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeOrderStore) ListByBuyer(_ context.Context, buyer uuid.UUID) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.BuyerID == buyer {
			out = append(out, o)
		}
	}
	return out, nil
}

func (s *fakeOrderStore) Count(_ context.Context) (int64, error) {
	return int64(len(s.orders)), nil
}

func (s *fakeOrderStore) Revenue(_ context.Context) (int64, error) {
	var total int64
	for _, o := range s.orders {
		total += o.Price
	}
	return total, nil
}

type fakeAuditRecorder struct {
	entries []models.AuditLog
}

func (r *fakeAuditRecorder) Record(_ context.Context, entry *models.AuditLog) error {
	r.entries = append(r.entries, *entry)
	return nil
}

type fakeThumbnailStore struct {
	uploads   int
	destroyed []string
	uploadErr error
}

func (s *fakeThumbnailStore) Upload(_ context.Context, filename string, _ io.Reader) (string, string, error) {
	if s.uploadErr != nil {
		return "", "", s.uploadErr
	}
	s.uploads++
	id := fmt.Sprintf("thumb-%d", s.uploads)
	return id, "https://cdn.example.com/" + id, nil
}

func (s *fakeThumbnailStore) Destroy(_ context.Context, publicID string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

type fakeGenerator struct {
	textOut  string
	imageOut string
	err      error
	lastText string
	lastImg  string
}

func (g *fakeGenerator) GenerateText(_ context.Context, prompt string) (string, error) {
	g.lastText = prompt
	return g.textOut, g.err
}

func (g *fakeGenerator) GenerateImage(_ context.Context, prompt string) (string, error) {
	g.lastImg = prompt
	return g.imageOut, g.err
}

type fakeSessionCreator struct {
	lastInput pkg.CreateCheckoutSessionInput
	session   *pkg.CheckoutSession
	err       error
	calls     int
}

func (c *fakeSessionCreator) CreateCheckoutSession(_ context.Context, in pkg.CreateCheckoutSessionInput) (*pkg.CheckoutSession, error) {
	c.calls++
	c.lastInput = in
	if c.err != nil {
		return nil, c.err
	}
	return c.session, nil
}

type fakePublisher struct {
	keys []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.keys = append(p.keys, key)
	return nil
}
