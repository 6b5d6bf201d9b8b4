package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/types"
)

func TestListAdmin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/activities", r.URL.Path)
		assert.Equal(t, "admin", r.URL.Query().Get("role"))
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"items": []ActivityRow{
				{ID: "1", CreatedBy: "p1", Objective: "Census", Status: "Pendiente"},
				{ID: "2", CreatedBy: "p2", Objective: "Visit", Status: "Completado"},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	activities, err := c.List(context.Background(), types.RoleAdmin, "admin")
	require.NoError(t, err)
	require.Len(t, activities, 2)
	assert.Equal(t, "p1", activities[0].PromoterID)
	assert.Equal(t, types.StatusCompleted, activities[1].Status)
}

func TestListGestorRequiresUser(t *testing.T) {
	c := NewClient("http://unused", 0)
	_, err := c.List(context.Background(), types.RoleFieldPromoter, "")
	require.Error(t, err)
}

func TestListServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "user requerido"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.List(context.Background(), types.RoleFieldPromoter, "p2")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "user requerido", apiErr.Message)
}

func TestListMissingOKFlagIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"items": []ActivityRow{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.List(context.Background(), types.RoleAdmin, "admin")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}

func TestCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var payload NewActivity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "p2", payload.CreatedBy)
		assert.Equal(t, "gestor", payload.Role)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"item": ActivityRow{
				ID:        "srv-77",
				CreatedBy: payload.CreatedBy,
				Objective: payload.Objective,
				Status:    payload.Status,
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	created, err := c.Create(context.Background(), NewActivity{
		CreatedBy: "p2",
		Role:      WireRoleGestor,
		Objective: "Census",
		Date:      "2026-03-01",
		Status:    string(types.StatusPending),
	})
	require.NoError(t, err)
	assert.Equal(t, "srv-77", created.ID, "remote id is authoritative")
}

func TestCreateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{"error": "objective requerido"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.Create(context.Background(), NewActivity{CreatedBy: "p2"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "objective requerido", apiErr.Message)
}

func TestMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway error</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 0)
	_, err := c.List(context.Background(), types.RoleAdmin, "admin")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
}
