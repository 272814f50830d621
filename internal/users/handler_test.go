package users_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"reporthub-backend/internal/shared/config"
	"reporthub-backend/internal/shared/server"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := config.Config{
		Env:            "test",
		DataDir:        "data",
		StorageType:    "local",
		StoragePath:    "uploads",
		TokenSecret:    "test-secret",
		MaxUploadBytes: 10 << 20,
	}
	return server.NewRouterWithFs(cfg, afero.NewMemMapFs())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func createTestUser(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/v1/user", map[string]string{"email": email})
	if w.Code != http.StatusCreated {
		t.Fatalf("create user: got status %d, body %s", w.Code, w.Body.String())
	}
	id, _ := decodeBody(t, w)["userId"].(string)
	if id == "" {
		t.Fatalf("create user: missing userId in %s", w.Body.String())
	}
	return id
}

func TestUserLifecycle(t *testing.T) {
	r := newTestRouter(t)
	userID := createTestUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodGet, "/api/v1/user/"+userID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get user: got status %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["email"] != "alice@example.com" {
		t.Errorf("got email %v", body["email"])
	}
	if body["username"] != "alice" {
		t.Errorf("got username %v", body["username"])
	}
	if body["role"] != "viewer" {
		t.Errorf("got role %v", body["role"])
	}
	if body["isActive"] != true {
		t.Errorf("got isActive %v", body["isActive"])
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/user/"+userID, map[string]string{"firstName": "Alice"})
	if w.Code != http.StatusOK {
		t.Fatalf("update user: got status %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["firstName"] != "Alice" {
		t.Errorf("firstName not updated: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/user/"+userID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete user: got status %d", w.Code)
	}

	// Default delete is a soft delete: the record survives, deactivated.
	w = doJSON(t, r, http.MethodGet, "/api/v1/user/"+userID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get soft-deleted user: got status %d", w.Code)
	}
	if decodeBody(t, w)["isActive"] != false {
		t.Errorf("user still active after delete: %s", w.Body.String())
	}
}

func TestUserHardDelete(t *testing.T) {
	r := newTestRouter(t)
	userID := createTestUser(t, r, "alice@example.com")

	w := doJSON(t, r, http.MethodDelete, "/api/v1/user/"+userID+"?hard=true", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("hard delete: got status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/user/"+userID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get hard-deleted user: got status %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "User not found") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestDuplicateEmailConflicts(t *testing.T) {
	r := newTestRouter(t)
	createTestUser(t, r, "a@x.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/user", map[string]string{"email": "A@X.com"})
	if w.Code != http.StatusConflict {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "already exists") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestCreateUserRejectsUnknownRole(t *testing.T) {
	r := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/v1/user", map[string]string{"email": "a@x.com", "role": "superuser"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "invalid role") {
		t.Errorf("got body %s", w.Body.String())
	}
}

func TestUpdateUserRole(t *testing.T) {
	r := newTestRouter(t)
	userID := createTestUser(t, r, "a@x.com")

	w := doJSON(t, r, http.MethodPut, "/api/v1/user/"+userID+"/role", map[string]string{"role": "editor"})
	if w.Code != http.StatusOK {
		t.Fatalf("update role: got status %d, body %s", w.Code, w.Body.String())
	}
	if decodeBody(t, w)["role"] != "editor" {
		t.Errorf("role not updated: %s", w.Body.String())
	}

	w = doJSON(t, r, http.MethodPut, "/api/v1/user/"+userID+"/role", map[string]string{"role": "superuser"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d for unknown role", w.Code)
	}
}

func TestListUsersFilteredByRole(t *testing.T) {
	r := newTestRouter(t)
	createTestUser(t, r, "viewer@x.com")

	w := doJSON(t, r, http.MethodPost, "/api/v1/user", map[string]string{"email": "admin@x.com", "role": "admin"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create admin: got status %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/user?role=admin", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list admins: got status %d", w.Code)
	}
	usersList, _ := decodeBody(t, w)["users"].([]any)
	if len(usersList) != 1 {
		t.Fatalf("got %d admins", len(usersList))
	}
	first, _ := usersList[0].(map[string]any)
	if first["email"] != "admin@x.com" {
		t.Errorf("got email %v", first["email"])
	}

	w = doJSON(t, r, http.MethodGet, "/api/v1/user?role=superuser", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d for unknown role filter", w.Code)
	}
}
