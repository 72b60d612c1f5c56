package identity

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/matjara-app/matjara-backend/pkg/db/models"
	"github.com/matjara-app/matjara-backend/pkg/enums"
	pkgerrors "github.com/matjara-app/matjara-backend/pkg/errors"
	"github.com/matjara-app/matjara-backend/pkg/pagination"
	"gorm.io/gorm"
)

type stubIdentityRepo struct {
	mu      sync.Mutex
	claimed map[ScopeKey]bool
	rows    map[uuid.UUID]*models.Identity
	seq     int

	createErr error
	findErr   error
}

func newStubIdentityRepo() *stubIdentityRepo {
	return &stubIdentityRepo{
		claimed: make(map[ScopeKey]bool),
		rows:    make(map[uuid.UUID]*models.Identity),
	}
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

func (s *stubIdentityRepo) Create(ctx context.Context, dto ReserveDTO) (*models.Identity, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claimed[dto.Key] {
		return nil, uniqueViolation("identities_scope_key_uniq")
	}
	s.claimed[dto.Key] = true
	row := dto.ToModel()
	row.ID = uuid.New()
	s.seq++
	row.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(s.seq) * time.Second)
	s.rows[row.ID] = row
	return row, nil
}

func (s *stubIdentityRepo) FindActiveByKey(ctx context.Context, key ScopeKey) (*models.Identity, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.StoreID == key.StoreID && row.Email == key.Email && row.Role == key.Role &&
			row.Status == enums.IdentityStatusActive {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubIdentityRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func (s *stubIdentityRepo) ListByStore(ctx context.Context, storeID uuid.UUID, role enums.IdentityRole, cursor *pagination.Cursor, limit int) ([]models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []models.Identity
	for _, row := range s.rows {
		if row.StoreID != storeID || row.Role != role {
			continue
		}
		if cursor != nil && !row.CreatedAt.Before(cursor.CreatedAt) {
			continue
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if len(rows) > pagination.FetchLimit(limit) {
		rows = rows[:pagination.FetchLimit(limit)]
	}
	return rows, nil
}

func (s *stubIdentityRepo) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.EmailVerified = true
	}
	return nil
}

func (s *stubIdentityRepo) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.LastLoginAt = &at
	}
	return nil
}

func (s *stubIdentityRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[id]; ok {
		row.PasswordHash = hash
	}
	return nil
}

func (s *stubIdentityRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.IdentityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.Status = status
	if status != enums.IdentityStatusActive {
		delete(s.claimed, ScopeKey{StoreID: row.StoreID, Email: row.Email, Role: row.Role})
	}
	return nil
}

func testReserveDTO(t *testing.T, storeID uuid.UUID, email string) ReserveDTO {
	t.Helper()
	key, err := DeriveKey(email, storeID, enums.IdentityRoleCustomer)
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	return ReserveDTO{
		Key:          key,
		PasswordHash: "$argon2id$stub",
		FirstName:    "Rana",
		LastName:     "Khoury",
	}
}

func TestReserve_CreatesIdentity(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto, err := svc.Reserve(context.Background(), testReserveDTO(t, uuid.New(), "Rana@Example.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Email != "rana@example.com" {
		t.Fatalf("expected normalized email persisted, got %q", dto.Email)
	}
	if dto.Status != enums.IdentityStatusActive {
		t.Fatalf("expected active status, got %s", dto.Status)
	}
}

func TestReserve_DuplicateKeyReturnsConflict(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)
	storeID := uuid.New()

	if _, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "a@b.com")); err != nil {
		t.Fatalf("first reservation should succeed: %v", err)
	}

	_, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "A@B.COM"))
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestReserve_SameEmailDifferentScopeSucceeds(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)
	storeID := uuid.New()

	if _, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "a@b.com")); err != nil {
		t.Fatalf("customer reservation failed: %v", err)
	}

	adminKey, _ := DeriveKey("a@b.com", storeID, enums.IdentityRoleAdmin)
	_, err := svc.Reserve(context.Background(), ReserveDTO{
		Key:          adminKey,
		PasswordHash: "$argon2id$stub",
		FirstName:    "Rana",
		LastName:     "Khoury",
	})
	if err != nil {
		t.Fatalf("admin role in same store must not conflict: %v", err)
	}

	if _, err := svc.Reserve(context.Background(), testReserveDTO(t, uuid.New(), "a@b.com")); err != nil {
		t.Fatalf("same email in another store must not conflict: %v", err)
	}
}

func TestReserve_ConcurrentClaimsAdmitExactlyOne(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)
	storeID := uuid.New()

	const attempts = 16
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "race@b.com"))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeConflict:
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || conflicts != attempts-1 {
		t.Fatalf("expected exactly one winner, got ok=%d conflicts=%d", ok, conflicts)
	}
}

func TestReserve_DisabledIdentityFreesKey(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)
	storeID := uuid.New()

	first, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "a@b.com"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Disable(context.Background(), first.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, "a@b.com")); err != nil {
		t.Fatalf("expected reservation to succeed after disable, got %v", err)
	}
}

func TestReserve_MissingPasswordHashRejected(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)

	dto := testReserveDTO(t, uuid.New(), "a@b.com")
	dto.PasswordHash = ""

	_, err := svc.Reserve(context.Background(), dto)
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListCustomers_PagesNewestFirst(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)
	storeID := uuid.New()

	for i := 0; i < 3; i++ {
		email := string(rune('a'+i)) + "@b.com"
		if _, err := svc.Reserve(context.Background(), testReserveDTO(t, storeID, email)); err != nil {
			t.Fatalf("reserve %d: %v", i, err)
		}
	}
	adminKey, _ := DeriveKey("admin@b.com", storeID, enums.IdentityRoleAdmin)
	if _, err := svc.Reserve(context.Background(), ReserveDTO{Key: adminKey, PasswordHash: "$argon2id$stub"}); err != nil {
		t.Fatalf("reserve admin: %v", err)
	}

	first, err := svc.ListCustomers(context.Background(), storeID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first.Items) != 2 || first.NextCursor == "" {
		t.Fatalf("expected a full first page with a cursor, got %d items", len(first.Items))
	}
	if first.Items[0].Email != "c@b.com" {
		t.Fatalf("expected newest customer first, got %q", first.Items[0].Email)
	}

	second, err := svc.ListCustomers(context.Background(), storeID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(second.Items) != 1 || second.NextCursor != "" {
		t.Fatalf("expected final page of one customer, got %d items", len(second.Items))
	}
	if second.Items[0].Email != "a@b.com" {
		t.Fatalf("expected oldest customer last, got %q", second.Items[0].Email)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo := newStubIdentityRepo()
	svc, _ := NewService(repo)

	_, err := svc.GetByID(context.Background(), uuid.New())
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
