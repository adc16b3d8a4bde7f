package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashureev/propdash/internal/domain"
)

func staffMux(t *testing.T) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/staff/all", func(w http.ResponseWriter, r *http.Request) {
		writeJSONString(w, `[{"id":"1","name":"Ana","role":"Manager","status":"active"}]`)
	})
	mux.HandleFunc("POST /api/staff/add", func(w http.ResponseWriter, r *http.Request) {
		var s domain.NewStaff
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&s))
		assert.Equal(t, "Bo Chen", s.Name)
		writeJSONString(w, `{"id":"2","name":"Bo Chen","role":"Cleaner","email":"bo@example.com","phone":"555","status":"active"}`)
	})
	mux.HandleFunc("PUT /api/staff/{id}/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSONString(w, `{"id":"`+r.PathValue("id")+`","status":"inactive"}`)
	})
	mux.HandleFunc("GET /api/staff/{id}/transactions", func(w http.ResponseWriter, r *http.Request) {
		writeJSONString(w, `[{"type":"expense","category":"Supplies","amount":"12.40","time":"today"}]`)
	})
	mux.HandleFunc("DELETE /api/staff/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "missing" {
			w.WriteHeader(http.StatusNotFound)
			writeJSONString(w, `{"error":"Staff member not found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func TestStaffList(t *testing.T) {
	t.Parallel()
	h := newHarness(t, staffMux(t))
	h.login(t)

	rec := h.do(t, http.MethodGet, "/api/staff", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	staff := decodeBody[[]domain.Staff](t, rec)
	require.Len(t, staff, 1)
	assert.Equal(t, "Ana", staff[0].Name)
}

func TestStaffAdd(t *testing.T) {
	t.Parallel()
	h := newHarness(t, staffMux(t))
	h.login(t)

	rec := h.do(t, http.MethodPost, "/api/staff", domain.NewStaff{Name: " Bo Chen ", Role: "Cleaner", Email: "bo@example.com", Phone: "555"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2", decodeBody[domain.Staff](t, rec).ID)
}

func TestStaffAddValidation(t *testing.T) {
	t.Parallel()
	h := newHarness(t, staffMux(t))
	h.login(t)

	rec := h.do(t, http.MethodPost, "/api/staff", domain.NewStaff{Name: "Bo", Email: "not-an-email"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body := decodeBody[struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}](t, rec)
	assert.Equal(t, "validation failed", body.Error)
	assert.Contains(t, body.Fields, "role")
	assert.Contains(t, body.Fields, "phone")
	assert.Contains(t, body.Fields, "email")
	assert.NotContains(t, body.Fields, "name")
	assert.Zero(t, h.remote.Load())
}

func TestStaffStatusTransactionsDelete(t *testing.T) {
	t.Parallel()
	h := newHarness(t, staffMux(t))
	h.login(t)

	rec := h.do(t, http.MethodPatch, "/api/staff/7/status", domain.StaffStatusUpdate{Status: "inactive"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "7", decodeBody[domain.Staff](t, rec).ID)

	rec = h.do(t, http.MethodPatch, "/api/staff/7/status", domain.StaffStatusUpdate{Status: "retired"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/staff/7/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	txs := decodeBody[[]domain.StaffTransaction](t, rec)
	require.Len(t, txs, 1)
	assert.Equal(t, "12.4", txs[0].Amount.String())

	rec = h.do(t, http.MethodDelete, "/api/staff/7", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/staff/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Staff member not found", decodeBody[map[string]string](t, rec)["error"])
}
