package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/komiti/internal/infrastructure/account/localjwt"
	"github.com/riskibarqy/komiti/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/random"
	"github.com/riskibarqy/komiti/internal/usecase"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	APIVersion string           `json:"apiVersion"`
	Data       T                `json:"data"`
	Error      *googleErrorBody `json:"error"`
}

type observation struct {
	route  string
	method string
	status int
}

type fakeObserver struct {
	mu    sync.Mutex
	items []observation
}

func (o *fakeObserver) ObserveHTTP(route, method string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.items = append(o.items, observation{route: route, method: method, status: status})
}

type testServer struct {
	t        *testing.T
	router   http.Handler
	observer *fakeObserver
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := logging.NewNop()
	db := memory.NewDB()
	committees := memory.NewCommitteeRepository(db)
	users := memory.NewUserRepository(db)
	ids := idgen.NewSequenceGenerator("id")
	mutator := usecase.NewLedgerMutator(committees)

	tokens, err := localjwt.NewManager("0123456789abcdef-test-secret", time.Hour, "komiti")
	require.NoError(t, err)

	handler := NewHandler(
		usecase.NewCommitteeService(committees, mutator, ids, nil, logger),
		usecase.NewPaymentService(committees, mutator, nil, logger),
		usecase.NewDrawService(committees, mutator, random.NewSource(7), ids, nil, logger),
		usecase.NewReportService(committees),
		usecase.NewReminderService(committees, nil, 2, nil, logger),
		usecase.NewUserService(users, tokens, ids, logger),
		logger,
	)

	observer := &fakeObserver{}
	return &testServer{
		t:        t,
		router:   NewRouter(handler, tokens, logger, RouterOptions{CORSAllowedOrigins: []string{"*"}, Observer: observer}),
		observer: observer,
	}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var payload []byte
	switch v := body.(type) {
	case nil:
	case string:
		payload = []byte(v)
	default:
		var err error
		payload, err = sonic.Marshal(v)
		require.NoError(s.t, err)
	}

	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var out envelope[T]
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) login(contact string) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email_or_phone": contact})
	require.Contains(s.t, []int{http.StatusOK, http.StatusCreated}, rec.Code, rec.Body.String())
	return decodeBody[loginDTO](s.t, rec).Data.AccessToken
}

func (s *testServer) createCommittee(token string) committeeDTO {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/v1/committees", token, map[string]any{
		"name":             "Office Pool",
		"amount_per_cycle": "1000",
		"start_date":       "2026-01-01",
		"members": []map[string]string{
			{"id": "a", "name": "Ali", "contact": "0300"},
			{"id": "b", "name": "Sara"},
		},
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[committeeDTO](s.t, rec).Data
}

func TestRouter_Healthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_RequiresBearerToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/v1/committees", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/committees", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodGet, "/v1/committees", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", decodeBody[any](t, rec).Error.Status)
}

func TestRouter_LoginIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	first := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email_or_phone": "Owner@Example.com", "name": "Owner"})
	require.Equal(t, http.StatusCreated, first.Code)
	second := s.do(http.MethodPost, "/v1/auth/login", "", map[string]string{"email_or_phone": "owner@example.com"})
	require.Equal(t, http.StatusOK, second.Code)

	a := decodeBody[loginDTO](t, first).Data
	b := decodeBody[loginDTO](t, second).Data
	assert.Equal(t, a.User.ID, b.User.ID)
	assert.Equal(t, "Bearer", b.TokenType)

	me := s.do(http.MethodGet, "/v1/me", b.AccessToken, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "Owner", decodeBody[userDTO](t, me).Data.Name)
}

func TestRouter_CommitteeLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login("owner@example.com")
	c := s.createCommittee(token)
	base := "/v1/committees/" + c.ID

	assert.Equal(t, 2, c.TotalCycles)
	assert.Equal(t, "active", c.Status)
	assert.True(t, decimal.NewFromInt(1000).Equal(c.AmountPerCycle))

	rec := s.do(http.MethodGet, base+"/payments", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]paymentDTO](t, rec).Data, 4)

	rec = s.do(http.MethodPost, base+"/payments/toggle", token, map[string]any{"member_id": "a", "cycle": 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	toggled := decodeBody[paymentDTO](t, rec).Data
	assert.True(t, toggled.IsPaid)
	assert.NotNil(t, toggled.PaidAt)

	rec = s.do(http.MethodGet, base+"/cycles/1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[cycleStatusDTO](t, rec).Data
	assert.Equal(t, 1, status.PaidCount)
	assert.Equal(t, 2, status.TotalCount)
	assert.False(t, status.Complete)
	assert.Equal(t, "2026-01-01", status.DueDate)

	rec = s.do(http.MethodGet, base+"/payments?cycle=1", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]paymentDTO](t, rec).Data, 2)

	rec = s.do(http.MethodGet, base+"/payments?cycle=x", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, base+"/draws/record", token, map[string]any{"cycle": 1, "winner_member_id": "b"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	recorded := decodeBody[drawResultDTO](t, rec).Data
	assert.Equal(t, "b", recorded.Winner.ID)
	assert.Equal(t, 1, recorded.Committee.CurrentCycle)

	rec = s.do(http.MethodPost, base+"/draws/record", token, map[string]any{"cycle": 1, "winner_member_id": "a"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, base+"/candidates", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	candidates := decodeBody[[]memberDTO](t, rec).Data
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].ID)

	rec = s.do(http.MethodPost, base+"/draws", token, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	drawn := decodeBody[drawResultDTO](t, rec).Data
	assert.Equal(t, "a", drawn.Winner.ID)
	assert.Equal(t, 2, drawn.Draw.Cycle)
	assert.Equal(t, "completed", drawn.Committee.Status)
	assert.False(t, drawn.Committee.IsActive)

	rec = s.do(http.MethodPost, base+"/draws", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodGet, base+"/draws", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	draws := decodeBody[[]drawDTO](t, rec).Data
	require.Len(t, draws, 2)
	assert.Equal(t, 1, draws[0].Cycle)
	assert.Equal(t, 2, draws[1].Cycle)

	rec = s.do(http.MethodGet, base+"/report", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rep := decodeBody[reportDTO](t, rec).Data
	assert.True(t, decimal.NewFromInt(4000).Equal(rep.ExpectedAmount))
	assert.True(t, decimal.NewFromInt(1000).Equal(rep.CollectedAmount))
	assert.Equal(t, 25.0, rep.CompletionRate)
	assert.Len(t, rep.Cycles, 2)

	rec = s.do(http.MethodGet, base+"/report.csv", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "committee-"+c.ID+"-report.csv")
	assert.True(t, strings.HasPrefix(rec.Body.String(), "field,value\n"))

	rec = s.do(http.MethodGet, "/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dash := decodeBody[dashboardDTO](t, rec).Data
	assert.Equal(t, 1, dash.TotalCommittees)
	assert.Equal(t, 0, dash.ActiveCommittees)
	assert.Equal(t, 2, dash.TotalMembers)
}

func TestRouter_UpdateArchiveDelete(t *testing.T) {
	s := newTestServer(t)
	token := s.login("owner@example.com")
	c := s.createCommittee(token)
	base := "/v1/committees/" + c.ID

	rec := s.do(http.MethodPut, base, token, map[string]any{"name": "Renamed", "start_date": "2026-03-01"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[committeeDTO](t, rec).Data
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, "2026-03-01", updated.StartDate)

	rec = s.do(http.MethodPost, base+"/archive", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "archived", decodeBody[committeeDTO](t, rec).Data.Status)

	rec = s.do(http.MethodPost, base+"/draws", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(http.MethodDelete, base, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, base, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_OtherOwnersCannotSeeCommittee(t *testing.T) {
	s := newTestServer(t)
	owner := s.login("owner@example.com")
	intruder := s.login("intruder@example.com")
	c := s.createCommittee(owner)

	rec := s.do(http.MethodGet, "/v1/committees/"+c.ID, intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodPost, "/v1/committees/"+c.ID+"/draws", intruder, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/v1/committees", intruder, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[[]committeeDTO](t, rec).Data)
}

func TestRouter_CreateCommitteeValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.login("owner@example.com")

	cases := map[string]any{
		"unknown field":  `{"name":"x","amount_per_cycle":"1","start_date":"2026-01-01","members":[{"name":"a"}],"extra":1}`,
		"missing name":   map[string]any{"amount_per_cycle": "1", "start_date": "2026-01-01", "members": []map[string]string{{"name": "a"}}},
		"no members":     map[string]any{"name": "x", "amount_per_cycle": "1", "start_date": "2026-01-01", "members": []map[string]string{}},
		"bad date":       map[string]any{"name": "x", "amount_per_cycle": "1", "start_date": "01/01/2026", "members": []map[string]string{{"name": "a"}}},
		"zero amount":    map[string]any{"name": "x", "amount_per_cycle": "0", "start_date": "2026-01-01", "members": []map[string]string{{"name": "a"}}},
		"cycle mismatch": map[string]any{"name": "x", "amount_per_cycle": "1", "total_cycles": 3, "start_date": "2026-01-01", "members": []map[string]string{{"name": "a"}}},
		"not json":       `{`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/v1/committees", token, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_SettingsDriveReminderLanguage(t *testing.T) {
	s := newTestServer(t)
	token := s.login("owner@example.com")
	c := s.createCommittee(token)

	rec := s.do(http.MethodGet, "/v1/me/settings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "en", decodeBody[settingsDTO](t, rec).Data.Language)

	rec = s.do(http.MethodPut, "/v1/me/settings", token, map[string]any{"language": "fr"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/v1/me/settings", token, map[string]any{"language": "ur", "theme": "dark"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	settings := decodeBody[settingsDTO](t, rec).Data
	assert.Equal(t, "ur", settings.Language)
	assert.Equal(t, "dark", settings.Theme)
	assert.True(t, settings.Notifications)

	rec = s.do(http.MethodGet, "/v1/committees/"+c.ID+"/reminders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	reminders := decodeBody[[]reminderDTO](t, rec).Data
	require.Len(t, reminders, 2)
	for _, r := range reminders {
		assert.True(t, r.Fallback)
		assert.Equal(t, 1, r.Cycle)
		assert.Contains(t, r.Text, "Office Pool")
		assert.Contains(t, r.Text, "محترم")
	}

	rec = s.do(http.MethodGet, "/v1/committees/"+c.ID+"/reminders?language=en", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, decodeBody[[]reminderDTO](t, rec).Data[0].Text, "Dear")

	rec = s.do(http.MethodGet, "/v1/committees/"+c.ID+"/summary?language=en", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody[summaryDTO](t, rec).Data.Text, "Office Pool")
}

func TestRouter_ObservesMatchedRoute(t *testing.T) {
	s := newTestServer(t)
	token := s.login("owner@example.com")
	c := s.createCommittee(token)

	s.do(http.MethodGet, "/v1/committees/"+c.ID, token, nil)
	s.do(http.MethodGet, "/nope", "", nil)

	s.observer.mu.Lock()
	defer s.observer.mu.Unlock()
	require.GreaterOrEqual(t, len(s.observer.items), 4)

	last := s.observer.items[len(s.observer.items)-2:]
	assert.Equal(t, observation{route: "GET /v1/committees/{committeeID}", method: http.MethodGet, status: http.StatusOK}, last[0])
	assert.Equal(t, http.StatusNotFound, last[1].status)
}
