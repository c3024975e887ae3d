package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/livaro/home/backend/api/internal/record"
	"github.com/livaro/home/backend/api/internal/record/repository"
	"github.com/livaro/home/backend/api/internal/record/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

// countingStore wraps a MemoryStore and counts inserts.
type countingStore struct {
	*repository.MemoryStore
	inserts int
}

func (c *countingStore) Insert(ctx context.Context, collection string, doc record.Document) (string, error) {
	c.inserts++
	return c.MemoryStore.Insert(ctx, collection, doc)
}

type brokenStore struct{ repository.MemoryStore }

func (b *brokenStore) Find(context.Context, string, record.Filter, int64) ([]record.Document, error) {
	return nil, errors.New(strings.Repeat("x", 1000))
}

func newRouter(store repository.Store, opts Options) *gin.Engine {
	g := gin.New()
	RegisterRecordRoutes(g, service.New(store), opts)
	return g
}

func do(g *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	g.ServeHTTP(w, req)
	return w
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateAndListEachKind(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())

	cases := []struct {
		path, body, message, query string
	}{
		{"/account", `{"vorname":"Anna","nachname":"Berg","email":"anna@example.com"}`, "Account angelegt", "email=anna@example.com"},
		{"/plan", `{"account_email":"anna@example.com","titel":"Kueche"}`, "Plan erstellt", "account_email=anna@example.com"},
		{"/angebot", `{"plan_id":"p1","titel":"Kueche komplett","preis":8900}`, "Angebot erstellt", "plan_id=p1"},
		{"/beratung", `{"account_email":"anna@example.com","thema":"Bad"}`, "Beratungsanfrage erfasst", "account_email=anna@example.com"},
		{"/service", `{"account_email":"anna@example.com","kategorie":"Montage","beschreibung":"Tuer"}`, "Service-Ticket erstellt", "account_email=anna@example.com"},
		{"/inspiration", `{"titel":"Landhaus","tags":["kueche","modern"]}`, "Inspiration veröffentlicht", "tag=kueche"},
	}
	for _, tc := range cases {
		w := do(g, http.MethodPost, tc.path, tc.body)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", tc.path, w.Body.String())
		var cr map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cr))
		require.NotEmpty(t, cr["id"])
		assert.Equal(t, tc.message, cr["message"])

		list := decodeList(t, do(g, http.MethodGet, tc.path+"?"+tc.query, ""))
		require.Len(t, list, 1, tc.path)
		assert.Equal(t, cr["id"], list[0]["_id"])
	}
}

func TestCreateAppliesDefaults(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())

	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/account", `{"vorname":"A","nachname":"B","email":"a@example.com"}`).Code)
	acc := decodeList(t, do(g, http.MethodGet, "/account", ""))[0]
	assert.Equal(t, "kunde", acc["rolle"])
	assert.Equal(t, false, acc["marketing_opt_in"])
	assert.Nil(t, acc["telefon"])

	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/service", `{"account_email":"a@example.com","kategorie":"K","beschreibung":"B"}`).Code)
	st := decodeList(t, do(g, http.MethodGet, "/service?status=offen", ""))[0]
	assert.Equal(t, "normal", st["prioritaet"])

	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/inspiration", `{"titel":"T"}`).Code)
	insp := decodeList(t, do(g, http.MethodGet, "/inspiration", ""))[0]
	assert.Contains(t, insp, "tags")
	assert.Empty(t, insp["tags"])
}

func TestCreateValidationNeverReachesStore(t *testing.T) {
	store := &countingStore{MemoryStore: repository.NewMemoryStore()}
	g := newRouter(store, DefaultOptions())

	bad := []struct{ path, body string }{
		{"/account", `{"vorname":"A","nachname":"B","email":"not-an-email"}`},
		{"/account", `{"vorname":"A","email":"a@example.com"}`},
		{"/plan", `{"account_email":"a@example.com","titel":"T","budget":-1}`},
		{"/angebot", `{"titel":"T"}`},
		{"/angebot", `{"titel":"T","preis":-0.5}`},
		{"/beratung", `{"account_email":"nope","thema":"T"}`},
		{"/service", `{"account_email":"a@example.com","kategorie":"K"}`},
		{"/inspiration", `{"titel":"T","tags":null}`},
		{"/inspiration", `not json`},
	}
	for _, tc := range bad {
		w := do(g, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "%s %s", tc.path, tc.body)
	}
	assert.Equal(t, 0, store.inserts)

	// zero is a valid price
	w := do(g, http.MethodPost, "/angebot", `{"titel":"T","preis":0}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, store.inserts)
}

func TestListAngebotConjunction(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())
	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/angebot", `{"plan_id":"p1","titel":"A","preis":1,"status":"entwurf"}`).Code)
	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/angebot", `{"plan_id":"p1","titel":"B","preis":2,"status":"gesendet"}`).Code)

	both := decodeList(t, do(g, http.MethodGet, "/angebot?plan_id=p1&status=entwurf", ""))
	require.Len(t, both, 1)
	assert.Equal(t, "A", both[0]["titel"])

	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/angebot?plan_id=p1", "")), 2)
	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/angebot", "")), 2)
	assert.Empty(t, decodeList(t, do(g, http.MethodGet, "/angebot?plan_id=p2", "")))
}

func TestListInspirationByTag(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())
	require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/inspiration", `{"titel":"Landhaus","tags":["kueche","modern"]}`).Code)

	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/inspiration?tag=kueche", "")), 1)
	w := do(g, http.MethodGet, "/inspiration?tag=bad", "")
	assert.Equal(t, "[]", w.Body.String())
}

func TestListLimit(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), Options{DefaultLimit: 5, MaxLimit: 8})
	for i := 0; i < 10; i++ {
		body := fmt.Sprintf(`{"vorname":"V","nachname":"N","email":"u%d@example.com"}`, i)
		require.Equal(t, http.StatusOK, do(g, http.MethodPost, "/account", body).Code)
	}
	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/account?limit=3", "")), 3)
	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/account", "")), 5)
	assert.Len(t, decodeList(t, do(g, http.MethodGet, "/account?limit=100", "")), 8)

	for _, q := range []string{"limit=abc", "limit=0", "limit=-2"} {
		assert.Equal(t, http.StatusUnprocessableEntity, do(g, http.MethodGet, "/account?"+q, "").Code, q)
	}
}

func TestListRejectsInvalidEmailFilter(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())
	w := do(g, http.MethodGet, "/plan?account_email=not-an-email", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "account_email")
}

func TestGatewayFailuresAreServerErrors(t *testing.T) {
	g := gin.New()
	RegisterRecordRoutes(g, service.New(nil), DefaultOptions())
	w := do(g, http.MethodPost, "/plan", `{"account_email":"a@example.com","titel":"T"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), service.ErrStorageUnavailable.Error())

	w = do(g, http.MethodGet, "/plan", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	g2 := newRouter(&brokenStore{}, Options{DetailMax: 40})
	w = do(g2, http.MethodGet, "/beratung", "")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, []rune(body["detail"]), 40)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "äö", truncate("äöü", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}

func TestCreateAngebotAcceptsDateForms(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2025-12-31T10:00:00Z", time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC)},
		{"2025-12-31T10:00:00+01:00", time.Date(2025, 12, 31, 9, 0, 0, 0, time.UTC)},
		{"2025-12-31T10:00:00", time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC)},
		{"2025-12-31T10:00", time.Date(2025, 12, 31, 10, 0, 0, 0, time.UTC)},
		{"2025-12-31", time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		g := newRouter(repository.NewMemoryStore(), DefaultOptions())
		body := fmt.Sprintf(`{"titel":"T","preis":1,"gueltig_bis":%q}`, tc.in)
		w := do(g, http.MethodPost, "/angebot", body)
		require.Equal(t, http.StatusOK, w.Code, "%s: %s", tc.in, w.Body.String())

		list := decodeList(t, do(g, http.MethodGet, "/angebot", ""))
		require.Len(t, list, 1)
		got, err := time.Parse(time.RFC3339, list[0]["gueltig_bis"].(string))
		require.NoError(t, err, tc.in)
		assert.True(t, tc.want.Equal(got), "%s: got %s", tc.in, got)
	}
}

func TestCreateAngebotRejectsBadDate(t *testing.T) {
	g := newRouter(repository.NewMemoryStore(), DefaultOptions())
	for _, in := range []string{`"31.12.2025"`, `"2025-13-01"`, `20251231`} {
		w := do(g, http.MethodPost, "/angebot", `{"titel":"T","preis":1,"gueltig_bis":`+in+`}`)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, in)
	}
	w := do(g, http.MethodPost, "/angebot", `{"titel":"T","preis":1,"gueltig_bis":null}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
