package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/billboard/internal/client/client"
	"github.com/dmitrijs2005/billboard/internal/client/identity"
	"github.com/dmitrijs2005/billboard/internal/client/models"
)

// ---- fake identity provider ----

type fakeIdentity struct {
	RegisterErr error
	ConfirmErr  error
	ResendErr   error
	AuthErr     error
	Cred        *identity.Credential

	RegisterCalls int
	ConfirmCalls  int
	ResendCalls   int
	AuthCalls     int

	LastRegisterUser  string
	LastRegisterPass  string
	LastRegisterAttrs map[string]string
	LastConfirmUser   string
	LastConfirmCode   string
	LastResendUser    string
	LastAuthUser      string
	LastAuthPass      string
}

func (f *fakeIdentity) Register(_ context.Context, username, password string, attrs map[string]string) error {
	f.RegisterCalls++
	f.LastRegisterUser, f.LastRegisterPass, f.LastRegisterAttrs = username, password, attrs
	return f.RegisterErr
}

func (f *fakeIdentity) Authenticate(_ context.Context, username, password string) (*identity.Credential, error) {
	f.AuthCalls++
	f.LastAuthUser, f.LastAuthPass = username, password
	if f.AuthErr != nil {
		return nil, f.AuthErr
	}
	if f.Cred != nil {
		return f.Cred, nil
	}
	return &identity.Credential{IDToken: "id-" + username, Claims: identity.Claims{Username: username}}, nil
}

func (f *fakeIdentity) ConfirmRegistration(_ context.Context, username, code string) error {
	f.ConfirmCalls++
	f.LastConfirmUser, f.LastConfirmCode = username, code
	return f.ConfirmErr
}

func (f *fakeIdentity) ResendConfirmationCode(_ context.Context, username string) error {
	f.ResendCalls++
	f.LastResendUser = username
	return f.ResendErr
}

// ---- fake profile API ----

type fakeProfiles struct {
	Profile   *models.Profile
	GetErr    error
	PutErr    error
	DeleteErr error

	GetCalls    int
	PutCalls    int
	DeleteCalls int
	LastToken   string
	LastPut     models.ProfileInput
}

func (f *fakeProfiles) GetProfile(_ context.Context, token string) (*models.Profile, error) {
	f.GetCalls++
	f.LastToken = token
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	if f.Profile == nil {
		return nil, &client.APIError{Method: "GET", Path: "/api/me/profile", Status: 404, Detail: "Profile not found"}
	}
	p := *f.Profile
	return &p, nil
}

func (f *fakeProfiles) PutProfile(_ context.Context, token string, in models.ProfileInput) (*models.Profile, error) {
	f.PutCalls++
	f.LastToken = token
	f.LastPut = in
	if f.PutErr != nil {
		return nil, f.PutErr
	}
	f.Profile = &models.Profile{
		Username: in.Username, Email: in.Email, Interests: in.Interests,
		Demographics: in.Demographics, Onboarded: in.Onboarded,
	}
	p := *f.Profile
	return &p, nil
}

func (f *fakeProfiles) DeleteAccount(_ context.Context, token string) error {
	f.DeleteCalls++
	f.LastToken = token
	return f.DeleteErr
}

// ---- fake saved store ----

// fakeSaved keeps the server-side saved list, most recently saved first.
type fakeSaved struct {
	mu sync.Mutex

	saved   []models.Bill
	known   map[int64]models.Bill
	ListErr error
	SaveErr error
	DelErr  error

	ListCalls int
	SaveCalls int
	DelCalls  int
	// onSave runs before SaveBill returns, for observing optimistic state.
	onSave func()
	// onList runs before ListSaved returns.
	onList func()
}

func newFakeSaved(known ...models.Bill) *fakeSaved {
	f := &fakeSaved{known: map[int64]models.Bill{}}
	for _, b := range known {
		f.known[b.ID] = b
	}
	return f
}

func (f *fakeSaved) ListSaved(_ context.Context, _ string) ([]models.Bill, error) {
	if f.onList != nil {
		f.onList()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]models.Bill{}, f.saved...), nil
}

func (f *fakeSaved) SaveBill(_ context.Context, _ string, id int64) error {
	if f.onSave != nil {
		f.onSave()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SaveCalls++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	for _, b := range f.saved {
		if b.ID == id {
			return nil
		}
	}
	b, ok := f.known[id]
	if !ok {
		b = models.Bill{ID: id}
	}
	f.saved = append([]models.Bill{b}, f.saved...)
	return nil
}

func (f *fakeSaved) UnsaveBill(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DelCalls++
	if f.DelErr != nil {
		return f.DelErr
	}
	f.saved = without(f.saved, id)
	return nil
}

// ---- token source ----

type staticToken struct {
	mu    sync.Mutex
	token string
}

func (s *staticToken) AuthToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *staticToken) set(t string) {
	s.mu.Lock()
	s.token = t
	s.mu.Unlock()
}

// ---- fake catalog ----

type fakeCatalog struct {
	mu       sync.Mutex
	bills    map[int64]models.Bill
	Err      error
	Upserted int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{bills: map[int64]models.Bill{}}
}

func (c *fakeCatalog) UpsertMany(_ context.Context, bs []models.Bill) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}
	for _, b := range bs {
		c.bills[b.ID] = b
		c.Upserted++
	}
	return nil
}

func (c *fakeCatalog) has(id int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.bills[id]
	return ok
}
