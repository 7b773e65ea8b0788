package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"monopoly/internal/app"
	"monopoly/internal/dice"
	"monopoly/internal/identity"
	"monopoly/internal/ledger"
	"monopoly/internal/storage/sqlite"
)

type testServer struct {
	handler http.Handler
	ids     *identity.Service
}

func newTestServer(t *testing.T, rolls ...int) *testServer {
	t.Helper()

	store, err := sqlite.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, store.Close()) })

	l := ledger.New("owner", ledger.DefaultName, ledger.DefaultSymbol)
	require.NoError(t, l.SetMinter("owner", app.DefaultEngineID))

	opts := []app.Option{app.WithStore(store), app.WithPublisher(NewLogPublisher(zerolog.Nop()))}
	if len(rolls) > 0 {
		opts = append(opts, app.WithRoller(dice.NewSequence(rolls...)))
	}
	engine, err := app.NewEngine(app.DefaultEngineID, l, opts...)
	require.NoError(t, err)

	ids := identity.NewService("test-secret", "monopoly", time.Hour)
	srv := NewServer(engine, ids, WithJournal(store), WithLogger(zerolog.Nop()))
	return &testServer{handler: srv.Handler(), ids: ids}
}

func (ts *testServer) do(t *testing.T, method, path, account string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if account != "" {
		token, err := ts.ids.Issue(account)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

func TestGameOverHTTP(t *testing.T) {
	ts := newTestServer(t, 4)

	rec := ts.do(t, http.MethodPost, "/v1/sessions", "alice", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[sessionJSON](t, rec)
	require.Equal(t, uint64(1), created.SessionID)
	require.Equal(t, "waiting", created.Status)

	rec = ts.do(t, http.MethodPost, "/v1/sessions/1/join", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.do(t, http.MethodPost, "/v1/sessions/1/start", "bob", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	started := decode[sessionJSON](t, rec)
	require.Equal(t, "active", started.Status)
	require.Equal(t, "alice", started.CurrentPlayer)

	rec = ts.do(t, http.MethodPost, "/v1/sessions/1/roll", "bob", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "not_your_turn", decode[errorJSON](t, rec).Code)

	rec = ts.do(t, http.MethodPost, "/v1/sessions/1/roll", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	roll := decode[rollJSON](t, rec)
	require.Equal(t, 4, roll.Value)
	require.Equal(t, 4, roll.Position)
	require.Equal(t, "bob", roll.NextTurn)

	rec = ts.do(t, http.MethodPost, "/v1/sessions/1/tiles/4/buy", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode[playerViewJSON](t, rec)
	require.Equal(t, []int{4}, view.OwnedTiles)
	require.Equal(t, int64(900), view.Balance)

	rec = ts.do(t, http.MethodGet, "/v1/sessions/1/players/bob", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(1000), decode[playerViewJSON](t, rec).Balance)

	rec = ts.do(t, http.MethodPost, "/v1/ledger/transfer", "bob", transferRequest{To: "carol", Amount: 125})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(875), decode[balanceJSON](t, rec).Balance)

	rec = ts.do(t, http.MethodGet, "/v1/ledger/carol", "carol", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(125), decode[balanceJSON](t, rec).Balance)

	rec = ts.do(t, http.MethodGet, "/v1/sessions/1/events?limit=3", "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Events []eventJSON `json:"events"`
	}](t, rec)
	require.Len(t, page.Events, 3)
	require.Equal(t, "session_created", page.Events[0].Kind)
	require.Equal(t, "player_joined", page.Events[1].Kind)
	require.Equal(t, "session_started", page.Events[2].Kind)

	rec = ts.do(t, http.MethodGet, "/v1/sessions/1/events?after="+strconv.FormatInt(page.Events[2].Seq, 10), "alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rest := decode[struct {
		Events []eventJSON `json:"events"`
	}](t, rec)
	kinds := make([]string, 0, len(rest.Events))
	for _, ev := range rest.Events {
		kinds = append(kinds, ev.Kind)
	}
	require.Equal(t, []string{"tokens_minted", "tokens_minted", "dice_rolled", "tile_purchased"}, kinds)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/v1/sessions", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = ts.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorStatuses(t *testing.T) {
	ts := newTestServer(t)
	ts.do(t, http.MethodPost, "/v1/sessions", "alice", nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"bad id", http.MethodGet, "/v1/sessions/zero", nil, http.StatusBadRequest, "invalid_argument"},
		{"missing session", http.MethodGet, "/v1/sessions/7", nil, http.StatusNotFound, "not_found"},
		{"too few players", http.MethodPost, "/v1/sessions/1/start", nil, http.StatusConflict, "insufficient_players"},
		{"already joined", http.MethodPost, "/v1/sessions/1/join", nil, http.StatusConflict, "already_joined"},
		{"bad tile", http.MethodPost, "/v1/sessions/1/tiles/x/buy", nil, http.StatusBadRequest, "invalid_argument"},
		{"buy while waiting", http.MethodPost, "/v1/sessions/1/tiles/1/buy", nil, http.StatusConflict, "invalid_status"},
		{"overdraw", http.MethodPost, "/v1/ledger/transfer", transferRequest{To: "bob", Amount: 1}, http.StatusConflict, "insufficient_funds"},
		{"bad paging", http.MethodGet, "/v1/sessions/1/events?limit=-1", nil, http.StatusBadRequest, "invalid_argument"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := ts.do(t, tc.method, tc.path, "alice", tc.body)
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			require.Equal(t, tc.code, decode[errorJSON](t, rec).Code)
		})
	}
}
