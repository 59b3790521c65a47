package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/auth"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/dto"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/application/kyc"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/domain/entity"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/blob"
	"github.com/kobamelo-johnson/Letshego-Analytics/internal/infrastructure/memstore"
	apphttp "github.com/kobamelo-johnson/Letshego-Analytics/internal/interfaces/http"
	"github.com/kobamelo-johnson/Letshego-Analytics/pkg/logger"
)

const (
	testUsername = "admin"
	testPassword = "letmein-dev"
)

type testEnv struct {
	app    *fiber.App
	store  *memstore.Store
	sync   *kyc.SyncController
	cancel context.CancelFunc
}

// newTestEnv wires the full stack against the in-memory collection: auth,
// sync controller, customer use case, filesystem blob store, router.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := memstore.New(nil)
	require.NoError(t, err)
	t.Cleanup(store.Close)

	authUC, err := auth.New(
		auth.OperatorConfig{Username: testUsername, Password: testPassword},
		auth.JWTConfig{Secret: "test-secret-key-for-unit-tests", ExpMinutes: 60, Issuer: "letshego-analytics-test"},
	)
	require.NoError(t, err)

	blobs, err := blob.NewFSStore(t.TempDir(), "/files")
	require.NoError(t, err)

	log := logger.New(logger.Config{Env: "test", Level: "error"})
	sync := kyc.NewSyncController(store, log, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go sync.Run(ctx)
	require.Eventually(t, sync.Ready, time.Second, 5*time.Millisecond)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:     authUC,
		Sync:       sync,
		CustomerUC: kyc.NewCustomerUseCase(store, blobs),
	})
	return &testEnv{app: app, store: store, sync: sync, cancel: cancel}
}

func (e *testEnv) seed(t *testing.T, id string, fields map[string]any) {
	t.Helper()
	require.NoError(t, e.store.Set(context.Background(), id, fields, false))
	require.Eventually(t, func() bool {
		view := e.sync.Current()
		for _, r := range view.Records {
			if r.ID == id {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
}

// login exercises the real login endpoint and returns the Bearer header.
func (e *testEnv) login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(dto.LoginRequest{Username: testUsername, Password: testPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return "Bearer " + out.Token
}

func (e *testEnv) do(t *testing.T, method, target, authHeader string, body io.Reader, contentType string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestLogin_WrongCredentials(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(dto.LoginRequest{Username: testUsername, Password: "wrong"})
	resp := env.do(t, http.MethodPost, "/api/auth/login", "", bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ = json.Marshal(dto.LoginRequest{Username: "", Password: ""})
	resp = env.do(t, http.MethodPost, "/api/auth/login", "", bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/dashboard", "", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/dashboard", "Bearer not-a-token", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/dashboard", "Basic abc", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/dashboard", token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/auth/logout", token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Same token, same expiry, but the session is gone.
	resp = env.do(t, http.MethodGet, "/api/dashboard", token, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNewLogin_ReplacesPreviousSession(t *testing.T) {
	env := newTestEnv(t)
	first := env.login(t)
	second := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/dashboard", first, nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "only the latest session token stays valid")
	resp = env.do(t, http.MethodGet, "/api/dashboard", second, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDashboard_ReflectsCollectionState(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID2", map[string]any{
		entity.FieldFullName:  "Naledi Botho",
		entity.FieldPIPStatus: "Flagged",
		entity.FieldCreatedAt: "2026-01-05T12:00:00Z",
	})
	env.seed(t, "ID1", map[string]any{
		entity.FieldFullName:  "Thabo Kgosi",
		entity.FieldPIPStatus: "None",
		entity.FieldCreatedAt: "2026-01-05T10:00:00Z",
	})
	token := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/dashboard", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.DashboardResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.PIPAlerts)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "ID2", out.Records[0].ID, "newest submission first")
	require.Len(t, out.Daily, 1)
	assert.Equal(t, "05/01/2026", out.Daily[0].Label)
	assert.Equal(t, 2, out.Daily[0].Count)
	assert.Len(t, out.Documents, 5)
}

func TestCustomers_ListAndDayFilter(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{entity.FieldCreatedAt: "2026-01-05T10:00:00Z"})
	env.seed(t, "ID2", map[string]any{entity.FieldCreatedAt: "2026-01-06T10:00:00Z"})
	token := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/customers/", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []dto.CustomerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	assert.Len(t, all, 2)

	resp = env.do(t, http.MethodGet, "/api/customers/?date=06%2F01%2F2026", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered []dto.CustomerResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&filtered))
	require.Len(t, filtered, 1)
	assert.Equal(t, "ID2", filtered[0].ID)
}

func TestEditCustomer_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{entity.FieldFullName: "Thabo Kgosi"})
	token := env.login(t)

	body, _ := json.Marshal(dto.EditCustomerRequest{FullName: "Naledi Botho", PIPStatus: "Flagged"})
	resp := env.do(t, http.MethodPut, "/api/customers/ID1", token, bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPut, "/api/customers/ID404", token, bytes.NewReader(body), "application/json")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteCustomer_UpdatesView(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{entity.FieldFullName: "Thabo Kgosi"})
	token := env.login(t)

	resp := env.do(t, http.MethodDelete, "/api/customers/ID1", token, nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		return env.sync.Current().Summary.Total == 0
	}, time.Second, 5*time.Millisecond)
}

func multipartFile(t *testing.T, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAttachDocument_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{entity.FieldFullName: "Thabo Kgosi"})
	token := env.login(t)

	body, contentType := multipartFile(t, "payslip.pdf", []byte("%PDF"))
	resp := env.do(t, http.MethodPost, "/api/customers/ID1/documents/payslip_url", token, body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.AttachResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "payslip_url", out.Field)
	assert.True(t, strings.HasPrefix(out.URL, "/files/admin_manual/ID1/payslip_url_"), out.URL)

	// Unknown document field is rejected before any storage write.
	body, contentType = multipartFile(t, "p.pdf", []byte("x"))
	resp = env.do(t, http.MethodPost, "/api/customers/ID1/documents/passport_url", token, body, contentType)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImportCustomers_EndToEnd(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t)

	csvData := "omang,name\n111222333,Thabo Kgosi\n,skipped row\n"
	body, contentType := multipartFile(t, "batch.csv", []byte(csvData))
	resp := env.do(t, http.MethodPost, "/api/customers/import", token, body, contentType)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out dto.ImportResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 1, out.Skipped)

	require.Eventually(t, func() bool {
		view := env.sync.Current()
		return view.Summary.Total == 1 && view.Records[0].ID == "ID111222333"
	}, time.Second, 5*time.Millisecond)
}

func TestExportMaster_DownloadHeadersAndBody(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{
		entity.FieldFullName:  "Thabo Kgosi",
		entity.FieldPIPStatus: "None",
		entity.FieldCreatedAt: "2026-01-05T10:00:00Z",
	})
	token := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/customers/export", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), kyc.MasterFilename)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(kyc.ExportHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ID1,Thabo Kgosi,None,"), lines[1])
}

func TestExportDaily_RequiresDateAndUsesSafeFilename(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t, "ID1", map[string]any{entity.FieldCreatedAt: "2026-01-05T10:00:00Z"})
	token := env.login(t)

	resp := env.do(t, http.MethodGet, "/api/customers/export/daily", token, nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/customers/export/daily?date=05%2F01%2F2026", token, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Letshego_Report_05-01-2026.csv")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "REPORT FOR DATE: 05/01/2026\n"), string(raw))
	assert.Contains(t, string(raw), "\nID1,")
}
