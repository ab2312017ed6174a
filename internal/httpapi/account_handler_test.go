package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRegister(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/users/user/", "", map[string]any{
		"email":      "test@example.com",
		"password":   "testpass-secret",
		"first_name": "Test",
		"last_name":  "Testov",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "test@example.com", body["email"])
	assert.Equal(t, "Test", body["first_name"])
	assert.Equal(t, "Testov", body["last_name"])
	assert.Equal(t, float64(0), body["module_count"])
	assert.NotContains(t, body, "password")
}

func TestAccountRegisterBlankEmail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/users/user/", "", map[string]any{
		"email":    "",
		"password": "testpass-secret",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestAccountRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "test@example.com", "testpass-secret", false)

	rec := s.do(t, http.MethodPost, "/users/user/", "", map[string]any{
		"email":    "test@example.com",
		"password": "testpass-secret",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestAccountListStaffOnly(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	s.createAccount(t, "user@example.com", "testpass-secret", false)

	// Anonymous.
	rec := s.do(t, http.MethodGet, "/users/user/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated but not staff: forbidden, not hidden.
	userToken := s.accessToken(t, "user@example.com", "testpass-secret")
	rec = s.do(t, http.MethodGet, "/users/user/", userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Staff.
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")
	rec = s.do(t, http.MethodGet, "/users/user/", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAccountRetrieve(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	user := s.createAccount(t, "user@example.com", "testpass-secret", false)
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")

	rec := s.do(t, http.MethodGet, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "user@example.com", body["email"])
	assert.Equal(t, float64(0), body["module_count"])

	rec = s.do(t, http.MethodGet, "/users/user/999/", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Non-staff detail access is forbidden even for their own row.
	userToken := s.accessToken(t, "user@example.com", "testpass-secret")
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/user/%d/", user.ID), userToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccountRetrieveShowsModuleCount(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	s.createAccount(t, "user@example.com", "testpass-secret", false)
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")
	userToken := s.accessToken(t, "user@example.com", "testpass-secret")

	rec := s.do(t, http.MethodPost, "/modules/create/", userToken, map[string]any{"number": 1, "name": "Module 1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	user, err := s.accountRepo.GetByEmail(t.Context(), "user@example.com")
	require.NoError(t, err)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["module_count"])
}

func TestAccountUpdatePartial(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	user := s.createAccount(t, "user@example.com", "testpass-secret", false)
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")

	rec := s.do(t, http.MethodPatch, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, map[string]any{
		"first_name": "Test1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Test1", body["first_name"])
	assert.Equal(t, "user@example.com", body["email"])

	// Non-staff cannot update.
	userToken := s.accessToken(t, "user@example.com", "testpass-secret")
	rec = s.do(t, http.MethodPatch, fmt.Sprintf("/users/user/%d/", user.ID), userToken, map[string]any{
		"first_name": "Nope",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAccountUpdateInvalidEmail(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	user := s.createAccount(t, "user@example.com", "testpass-secret", false)
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")

	rec := s.do(t, http.MethodPatch, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, map[string]any{
		"email": "not-an-email",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	errs, ok := decodeBody(t, rec)["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestAccountDelete(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "admin@example.com", "testpass-secret", true)
	user := s.createAccount(t, "user@example.com", "testpass-secret", false)
	adminToken := s.accessToken(t, "admin@example.com", "testpass-secret")
	userToken := s.accessToken(t, "user@example.com", "testpass-secret")

	// The user owns a module; deleting the account cascades to it.
	rec := s.do(t, http.MethodPost, "/modules/create/", userToken, map[string]any{"number": 1, "name": "Module 1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	moduleID := int64(decodeBody(t, rec)["id"].(float64))

	rec = s.do(t, http.MethodDelete, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/users/user/%d/", user.ID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, fmt.Sprintf("/modules/%d/", moduleID), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTokenObtain(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "user@example.com", "testpass-secret", false)

	rec := s.do(t, http.MethodPost, "/users/token/", "", map[string]any{
		"email":    "user@example.com",
		"password": "testpass-secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["access"])
	assert.NotEmpty(t, body["refresh"])

	rec = s.do(t, http.MethodPost, "/users/token/", "", map[string]any{
		"email":    "user@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenRefreshRotation(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "user@example.com", "testpass-secret", false)

	rec := s.do(t, http.MethodPost, "/users/token/", "", map[string]any{
		"email":    "user@example.com",
		"password": "testpass-secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := decodeBody(t, rec)["refresh"].(string)

	rec = s.do(t, http.MethodPost, "/users/token/refresh/", "", map[string]any{"refresh": refresh})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["access"])

	// The rotated-out token is dead.
	rec = s.do(t, http.MethodPost, "/users/token/refresh/", "", map[string]any{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTokenLogout(t *testing.T) {
	s := newTestServer(t)
	s.createAccount(t, "user@example.com", "testpass-secret", false)

	rec := s.do(t, http.MethodPost, "/users/token/", "", map[string]any{
		"email":    "user@example.com",
		"password": "testpass-secret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	refresh := decodeBody(t, rec)["refresh"].(string)

	rec = s.do(t, http.MethodPost, "/users/token/logout/", "", map[string]any{"refresh": refresh})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodPost, "/users/token/refresh/", "", map[string]any{"refresh": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
