package service_test

import (
	"context"
	"fmt"
	"time"

	"github.com/heliohq/claims-portal/internal/domain"
	"github.com/heliohq/claims-portal/internal/repository"
)

// ---------- Mocks ----------

type publishedEvent struct {
	subject string
	data    any
}

type mockBus struct {
	published  []publishedEvent
	publishErr error
}

func (m *mockBus) Publish(_ context.Context, subject string, data interface{}) error {
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedEvent{subject: subject, data: data})
	return nil
}

func (m *mockBus) Close() error { return nil }

func (m *mockBus) bySubject(subject string) []publishedEvent {
	var out []publishedEvent
	for _, e := range m.published {
		if e.subject == subject {
			out = append(out, e)
		}
	}
	return out
}

type storedToken struct {
	hash    string
	expires time.Time
}

type mockUserRepo struct {
	nextID       int
	users        map[string]*domain.User // id -> user
	verifyTokens map[string]storedToken  // id -> token
	resetTokens  map[string]storedToken
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		nextID:       1,
		users:        make(map[string]*domain.User),
		verifyTokens: make(map[string]storedToken),
		resetTokens:  make(map[string]storedToken),
	}
}

func (m *mockUserRepo) Create(_ context.Context, req *domain.SignupUserRequest, passwordHash, verifyTokenHash string, verifyExpiresAt time.Time) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == req.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}

	id := fmt.Sprintf("user-%d", m.nextID)
	m.nextID++

	user := &domain.User{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Phone:        req.Phone,
		Role:         req.Role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[id] = user
	m.verifyTokens[id] = storedToken{hash: verifyTokenHash, expires: verifyExpiresAt}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindUnverifiedByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email && !u.IsVerified {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	return m.users[id], nil
}

func (m *mockUserRepo) List(_ context.Context) ([]domain.UserSummary, error) {
	var out []domain.UserSummary
	for _, u := range m.users {
		out = append(out, domain.UserSummary{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	return out, nil
}

func (m *mockUserRepo) SetVerificationToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	m.verifyTokens[id] = storedToken{hash: tokenHash, expires: expiresAt}
	return nil
}

func (m *mockUserRepo) FindByVerificationToken(_ context.Context, tokenHash string) (*domain.User, error) {
	for id, tok := range m.verifyTokens {
		if tok.hash == tokenHash && tok.expires.After(time.Now()) {
			return m.users[id], nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) ApplyVerification(_ context.Context, id string, promoteEmail *string) (*domain.User, error) {
	user := m.users[id]
	if promoteEmail != nil {
		for _, u := range m.users {
			if u.ID != id && u.Email == *promoteEmail {
				return nil, repository.ErrDuplicateEmail
			}
		}
		user.Email = *promoteEmail
		user.PendingEmail = nil
	}
	user.IsVerified = true
	delete(m.verifyTokens, id)
	return user, nil
}

func (m *mockUserRepo) StageEmailChange(_ context.Context, id, newEmail, tokenHash string, expiresAt time.Time) error {
	user := m.users[id]
	user.PendingEmail = &newEmail
	m.verifyTokens[id] = storedToken{hash: tokenHash, expires: expiresAt}
	return nil
}

func (m *mockUserRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	m.resetTokens[id] = storedToken{hash: tokenHash, expires: expiresAt}
	return nil
}

func (m *mockUserRepo) FindByResetToken(_ context.Context, tokenHash string) (*domain.User, error) {
	for id, tok := range m.resetTokens {
		if tok.hash == tokenHash && tok.expires.After(time.Now()) {
			return m.users[id], nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) (*domain.User, error) {
	user := m.users[id]
	user.PasswordHash = passwordHash
	now := time.Now()
	user.PasswordChangedAt = &now
	delete(m.resetTokens, id)
	return user, nil
}

type mockAdminRepo struct {
	nextID      int
	admins      map[string]*domain.Admin
	resetTokens map[string]storedToken
}

func newMockAdminRepo() *mockAdminRepo {
	return &mockAdminRepo{
		nextID:      1,
		admins:      make(map[string]*domain.Admin),
		resetTokens: make(map[string]storedToken),
	}
}

func (m *mockAdminRepo) Create(_ context.Context, req *domain.SignupAdminRequest, passwordHash string) (*domain.Admin, error) {
	for _, a := range m.admins {
		if a.Email == req.Email {
			return nil, repository.ErrDuplicateEmail
		}
	}

	id := fmt.Sprintf("admin-%d", m.nextID)
	m.nextID++

	admin := &domain.Admin{
		ID:           id,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: passwordHash,
		Role:         req.Role,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.admins[id] = admin
	return admin, nil
}

func (m *mockAdminRepo) FindByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, a := range m.admins {
		if a.Email == email && a.IsActive && a.DeletedAt == nil {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAdminRepo) FindByID(_ context.Context, id string) (*domain.Admin, error) {
	admin := m.admins[id]
	if admin == nil || !admin.IsActive || admin.DeletedAt != nil {
		return nil, nil
	}
	return admin, nil
}

func (m *mockAdminRepo) ListByRole(_ context.Context, role string) ([]domain.AdminSummary, error) {
	var out []domain.AdminSummary
	for _, a := range m.admins {
		if a.Role == role && a.DeletedAt == nil {
			out = append(out, domain.AdminSummary{ID: a.ID, Name: a.Name, Email: a.Email, IsActive: a.IsActive})
		}
	}
	return out, nil
}

func (m *mockAdminRepo) Update(_ context.Context, id string, req *domain.UpdateAdminRequest) (*domain.Admin, error) {
	admin, _ := m.FindByID(context.Background(), id)
	if admin == nil {
		return nil, nil
	}
	if req.Email != nil {
		for _, a := range m.admins {
			if a.ID != id && a.Email == *req.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
		admin.Email = *req.Email
	}
	if req.Name != nil {
		admin.Name = *req.Name
	}
	if req.Role != nil {
		admin.Role = *req.Role
	}
	return admin, nil
}

func (m *mockAdminRepo) SoftDelete(_ context.Context, id string) (*domain.Admin, error) {
	admin, _ := m.FindByID(context.Background(), id)
	if admin == nil {
		return nil, nil
	}
	now := time.Now()
	admin.IsActive = false
	admin.DeletedAt = &now
	return admin, nil
}

func (m *mockAdminRepo) SetResetToken(_ context.Context, id, tokenHash string, expiresAt time.Time) error {
	m.resetTokens[id] = storedToken{hash: tokenHash, expires: expiresAt}
	return nil
}

func (m *mockAdminRepo) FindByResetToken(_ context.Context, tokenHash string) (*domain.Admin, error) {
	for id, tok := range m.resetTokens {
		if tok.hash == tokenHash && tok.expires.After(time.Now()) {
			return m.FindByID(context.Background(), id)
		}
	}
	return nil, nil
}

func (m *mockAdminRepo) UpdatePassword(_ context.Context, id, passwordHash string) (*domain.Admin, error) {
	admin := m.admins[id]
	admin.PasswordHash = passwordHash
	now := time.Now()
	admin.PasswordChangedAt = &now
	delete(m.resetTokens, id)
	return admin, nil
}

type mockKycRepo struct {
	nextID  int
	records map[string]*domain.KYC
	users   *mockUserRepo
}

func newMockKycRepo(users *mockUserRepo) *mockKycRepo {
	return &mockKycRepo{nextID: 1, records: make(map[string]*domain.KYC), users: users}
}

func (m *mockKycRepo) SubmitForUser(_ context.Context, userID string, req *domain.KycRequest) (*domain.KYC, *domain.User, error) {
	id := fmt.Sprintf("kyc-%d", m.nextID)
	m.nextID++

	record := &domain.KYC{
		ID:                id,
		BankAccountName:   req.BankAccountName,
		BankName:          req.BankName,
		AccountType:       req.AccountType,
		AccountNumber:     req.AccountNumber,
		IfscCode:          req.IfscCode,
		PanNumber:         req.PanNumber,
		GstRegistered:     req.GstRegistered,
		GstNumber:         req.GstNumber,
		BankDetailsURL:    req.BankDetailsURL,
		PanCardURL:        req.PanCardURL,
		GstCertificateURL: req.GstCertificateURL,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	m.records[id] = record

	user := m.users.users[userID]
	user.KycID = &record.ID
	user.IsKycComplete = true
	return record, user, nil
}

func (m *mockKycRepo) FindByID(_ context.Context, id string) (*domain.KYC, error) {
	return m.records[id], nil
}

func (m *mockKycRepo) FindByUserID(_ context.Context, userID string) (*domain.KYC, error) {
	user := m.users.users[userID]
	if user == nil || user.KycID == nil {
		return nil, nil
	}
	return m.records[*user.KycID], nil
}

func (m *mockKycRepo) Update(_ context.Context, id string, req *domain.KycRequest) (*domain.KYC, error) {
	record := m.records[id]
	if record == nil {
		return nil, nil
	}
	record.BankAccountName = req.BankAccountName
	record.BankName = req.BankName
	record.AccountType = req.AccountType
	record.AccountNumber = req.AccountNumber
	record.IfscCode = req.IfscCode
	record.PanNumber = req.PanNumber
	record.GstRegistered = req.GstRegistered
	record.GstNumber = req.GstNumber
	record.BankDetailsURL = req.BankDetailsURL
	record.PanCardURL = req.PanCardURL
	record.GstCertificateURL = req.GstCertificateURL
	record.UpdatedAt = time.Now()
	return record, nil
}

type mockFormRepo struct {
	nextID int
	forms  map[string]*domain.Form
	claims map[string][]domain.Claim
}

func newMockFormRepo() *mockFormRepo {
	return &mockFormRepo{nextID: 1, forms: make(map[string]*domain.Form), claims: make(map[string][]domain.Claim)}
}

func (m *mockFormRepo) CreateWithClaims(_ context.Context, userID string, total float64, claims []domain.ClaimInput) (*domain.Form, []domain.Claim, error) {
	id := fmt.Sprintf("form-%d", m.nextID)
	m.nextID++

	form := &domain.Form{
		ID:               id,
		UserID:           userID,
		FormStatus:       domain.FormStatusInReview,
		TotalClaimAmount: total,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	m.forms[id] = form

	var created []domain.Claim
	for i, in := range claims {
		created = append(created, domain.Claim{
			ID:          fmt.Sprintf("%s-claim-%d", id, i+1),
			FormID:      id,
			UserID:      userID,
			Date:        in.Date,
			Amount:      in.Amount,
			InvoiceType: in.InvoiceType,
			Remarks:     in.Remarks,
			BillURL:     in.BillURL,
			ClaimStatus: domain.ClaimStatusInReview,
			CreatedAt:   time.Now(),
		})
	}
	m.claims[id] = created
	return form, created, nil
}

func (m *mockFormRepo) GetByIDWithClaims(_ context.Context, id string) (*domain.Form, []domain.Claim, error) {
	form := m.forms[id]
	if form == nil {
		return nil, nil, nil
	}
	return form, m.claims[id], nil
}
