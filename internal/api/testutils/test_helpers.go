package testutils

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/upforaride/server/internal/api"
	"github.com/upforaride/server/internal/config"
	"github.com/upforaride/server/internal/models"
	"github.com/upforaride/server/internal/ocr"
	"github.com/upforaride/server/internal/repository"
	"github.com/upforaride/server/internal/service"
)

// TestContext holds all dependencies for tests
type TestContext struct {
	Router     *gin.Engine
	Repository repository.Repository
	Service    service.Service
	DB         *sqlx.DB
	Users      []models.User
}

// SetupTestContext creates a new test context backed by a throwaway
// SQLite database, so API tests run without external services.
func SetupTestContext(t *testing.T) *TestContext {
	return SetupTestContextWithOcr(t, nil)
}

// SetupTestContextWithOcr is SetupTestContext with an OCR client wired
// into the handler (pointed at a fake upstream in tests).
func SetupTestContextWithOcr(t *testing.T, ocrClient *ocr.Client) *TestContext {
	t.Helper()

	cfg := config.LoadConfig()
	cfg.Database.Driver = "sqlite"
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")

	db, err := config.SetupDatabase(cfg)
	require.NoError(t, err, "failed to set up test database")
	t.Cleanup(func() { db.Close() })

	repo := repository.NewSQLRepository(db)

	users := models.DefaultUsers()
	svc := service.NewDefaultService(repo, users)

	handler := api.NewHandler(svc, ocrClient, nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(api.CORSMiddleware())
	handler.SetupRoutes(router)

	return &TestContext{
		Router:     router,
		Repository: repo,
		Service:    svc,
		DB:         db,
		Users:      users,
	}
}

// PerformRequest executes an HTTP request against the router
func PerformRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer

	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBody)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// DecodeJSON unmarshals a recorded response body into out.
func DecodeJSON(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}
