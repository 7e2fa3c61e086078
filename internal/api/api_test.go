package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/storage"
	"github.com/pageza/recipe-app/backend/internal/testhelpers"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

const testJWTSecret = "test-secret"

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	auth   *service.AuthService
	store  *storage.LocalStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testhelpers.SetupTestDatabase(t)
	store, err := storage.NewLocalStore(t.TempDir(), "/media")
	require.NoError(t, err)

	auth := service.NewAuthService(db, testJWTSecret)
	recipes := service.NewRecipeService(db, store, 1<<20)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	root := r.Group("")
	NewUserHandler(auth).RegisterRoutes(root)
	recipe := root.Group("/recipe")
	NewTagHandler(service.NewTagService(db), auth).RegisterRoutes(recipe)
	NewIngredientHandler(service.NewIngredientService(db), auth).RegisterRoutes(recipe)
	NewRecipeHandler(recipes, auth, 1<<20).RegisterRoutes(recipe)

	return &testEnv{router: r, db: db, auth: auth, store: store}
}

// login creates a user and returns it with a bearer token
func (e *testEnv) login(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := testhelpers.CreateTestUser(t, e.db, email)
	token, err := e.auth.IssueToken(context.Background(), email, testhelpers.TestPassword)
	require.NoError(t, err)
	return user, token
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		reader = bytes.NewReader(testhelpers.JSONMarshal(t, b))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) upload(t *testing.T, path, filename string, data []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if filename != "" {
		part, err := mw.CreateFormFile("image", filename)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type errorBody struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}
