package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"globetrail/database"
	"globetrail/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	cookie *http.Cookie
}

// newTestServer wires d behind the session middleware. Missing Identity,
// Users and Sessions get permissive fakes so tests can log in.
func newTestServer(t *testing.T, d Deps) *testServer {
	if d.Sessions == nil {
		d.Sessions = session.NewManager(session.NewMemoryStore(time.Hour), time.Hour, false, zap.NewNop())
	}
	if d.Identity == nil {
		d.Identity = &fakeIdentity{}
	}
	if d.Users == nil {
		d.Users = newMemUsers()
	}
	h := New(d)

	r := gin.New()
	r.Use(d.Sessions.Load())
	h.RegisterRoutes(r, nil)
	return &testServer{t: t, router: r}
}

func (s *testServer) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if s.cookie != nil {
		req.AddCookie(s.cookie)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// login signs in as uid and keeps the session cookie for later requests.
func (s *testServer) login(uid string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/login", gin.H{"email": uid + "@example.com", "firebaseUid": uid})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			s.cookie = c
		}
	}
	require.NotNil(s.t, s.cookie)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ─── Fakes ───────────────────────────────────────────────────────────────────

type fakeIdentity struct {
	verifyFn func(token, uid string) (*session.IdentityClaims, error)
}

func (f *fakeIdentity) Verify(token, uid string) (*session.IdentityClaims, error) {
	if f.verifyFn != nil {
		return f.verifyFn(token, uid)
	}
	return &session.IdentityClaims{}, nil
}

type memUsers struct {
	mu    sync.Mutex
	users map[string]*database.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*database.User)}
}

func (m *memUsers) GetUser(_ context.Context, id string) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) EnsureUser(_ context.Context, u *database.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; ok {
		return false, nil
	}
	cp := *u
	m.users[u.ID] = &cp
	return true, nil
}

func (m *memUsers) FieldTakenByOther(_ context.Context, field, value, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.users {
		if id == userID {
			continue
		}
		if (field == "email" && u.Email == value) || (field == "phone" && u.Phone == value) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) UpdateUser(_ context.Context, id string, fields map[string]string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return database.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "name":
			u.Name = v
		case "email":
			u.Email = v
		case "phone":
			u.Phone = v
		case "country":
			u.Country = v
		case "state":
			u.State = v
		}
	}
	u.UpdatedAt = now
	return nil
}

// memItineraries implements itinerary.Store.
type memItineraries struct {
	mu    sync.Mutex
	items map[string]database.Itinerary
}

func newMemItineraries() *memItineraries {
	return &memItineraries{items: make(map[string]database.Itinerary)}
}

func (m *memItineraries) InsertItinerary(_ context.Context, it *database.Itinerary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[it.ID] = *it
	return nil
}

func (m *memItineraries) ListItineraries(_ context.Context, userID string, now time.Time) ([]database.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []database.Itinerary
	for _, it := range m.items {
		if it.UserID != userID || it.Deleted {
			continue
		}
		if it.ExpiresAt != nil && !it.ExpiresAt.After(now) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memItineraries) GetItinerary(_ context.Context, userID, id string) (*database.Itinerary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID {
		return nil, database.ErrNotFound
	}
	return &it, nil
}

func (m *memItineraries) SoftDeleteItinerary(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[id]
	if !ok || it.UserID != userID || it.Deleted {
		return database.ErrNotFound
	}
	it.Deleted = true
	it.Places = nil
	m.items[id] = it
	return nil
}
