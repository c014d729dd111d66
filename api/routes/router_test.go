package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/bankdki/stock-api/api/responses"
	internalauth "github.com/bankdki/stock-api/internal/auth"
	"github.com/bankdki/stock-api/internal/media"
	"github.com/bankdki/stock-api/internal/stocks"
	"github.com/bankdki/stock-api/internal/users"
	"github.com/bankdki/stock-api/pkg/config"
	"github.com/bankdki/stock-api/pkg/db"
	"github.com/bankdki/stock-api/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App:   config.AppConfig{Env: "development", Port: "0"},
		JWT:   config.JWTConfig{Secret: "router-test-secret", Issuer: "stock-api", ExpirationMinutes: 60},
		Media: config.MediaConfig{UploadDir: t.TempDir(), MaxUploadMB: 5, SniffContent: true},
		Seed:  config.SeedConfig{Enabled: true, AdminUsername: "admin", AdminPassword: "password"},
	}
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Stock{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	cfg := testConfig(t)
	client, err := db.New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatalf("db client: %v", err)
	}
	userRepo := users.NewRepository(conn)
	if err := users.SeedAdmin(context.Background(), client, cfg.Seed, cfg.Password, nil); err != nil {
		t.Fatalf("seed: %v", err)
	}

	authService, err := internalauth.NewService(internalauth.ServiceParams{
		UserRepo:  userRepo,
		JWTConfig: cfg.JWT,
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	imageStore, err := media.NewDiskStore(cfg.Media.UploadDir)
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}

	stockService, err := stocks.NewService(stocks.ServiceParams{
		Repo:     stocks.NewRepository(conn),
		Images:   imageStore,
		MediaCfg: cfg.Media,
	})
	if err != nil {
		t.Fatalf("stock service: %v", err)
	}

	return NewRouter(Params{
		Config:       cfg,
		Database:     stubPinger{},
		Users:        userRepo,
		AuthService:  authService,
		StockService: stockService,
	})
}

func login(t *testing.T, router http.Handler, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{"username": {username}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func loginToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := login(t, router, "admin", "password")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	var env struct {
		Data map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if env.Data["token"] == "" {
		t.Fatal("expected token in login payload")
	}
	return env.Data["token"]
}

func createStockRequest(t *testing.T, token, serial string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	fields := map[string]string{
		"namaBarang":      "Laptop Dell",
		"jumlahStok":      "4",
		"nomorSeriBarang": serial,
	}
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/stocks/create", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestLoginAndProtectedFlow(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	// create
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, createStockRequest(t, token, "SN-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("create: expected 200 got %d %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Data stocks.StockDTO `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode create: %v", err)
	}

	// list
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stocks/list", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200 got %d", rec.Code)
	}

	// detail
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stocks/detail/"+created.Data.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("detail: expected 200 got %d %s", rec.Code, rec.Body.String())
	}

	// delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/stocks/delete/"+created.Data.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: expected 200 got %d", rec.Code)
	}

	// detail after delete
	req = httptest.NewRequest(http.MethodGet, "/api/v1/stocks/detail/"+created.Data.ID.String(), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("detail after delete: expected 404 got %d", rec.Code)
	}
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/stocks/list"},
		{http.MethodPost, "/api/v1/stocks/create"},
		{http.MethodGet, "/api/v1/stocks/detail/00000000-0000-0000-0000-000000000000"},
		{http.MethodPut, "/api/v1/stocks/update/00000000-0000-0000-0000-000000000000"},
		{http.MethodDelete, "/api/v1/stocks/delete/00000000-0000-0000-0000-000000000000"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", tc.method, tc.path, rec.Code)
		}
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	router := newTestRouter(t)

	rec := login(t, router, "admin", "wrong")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	var env responses.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Message != "invalid username or password" {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestDuplicateSerialReturnsConflict(t *testing.T) {
	router := newTestRouter(t)
	token := loginToken(t, router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, createStockRequest(t, token, "SN-DUP"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first create: expected 200 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, createStockRequest(t, token, "SN-DUP"))
	if rec.Code != http.StatusConflict {
		t.Fatalf("second create: expected 409 got %d %s", rec.Code, rec.Body.String())
	}
	var env responses.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Message != "The 'Nomor Seri Barang' must be unique. The value 'SN-DUP' already exists." {
		t.Fatalf("unexpected message %q", env.Message)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, rec.Code)
		}
	}
}
