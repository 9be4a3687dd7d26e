package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/taller-ecom/internal/auth"
	"github.com/MikeMC777/taller-ecom/internal/shop"
	"github.com/MikeMC777/taller-ecom/internal/store"
)

//
// ===== ROUTER de pruebas sobre SQLite en un directorio temporal =====
//

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gw, err := store.OpenSQLite(filepath.Join(t.TempDir(), "api.db"), nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(gw.Close)
	if err := store.Migrate(context.Background(), gw); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := shop.NewService(gw, auth.BcryptHasher{Cost: bcrypt.MinCost})
	return newRouter(routerDeps{
		svc:     svc,
		tokens:  auth.NewTokens("test-secret", time.Hour, "shop-test"),
		gw:      gw,
		reg:     prometheus.NewRegistry(),
		log:     zap.NewNop(),
		timeout: 5 * time.Second,
	})
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("json inválido: %v body=%s", err, w.Body.String())
	}
}

// register crea un cliente y devuelve su id y un token.
func register(t *testing.T, r *gin.Engine, email string) (int64, string) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Ana","email":%q,"password":"s3cret","address":"Calle 1"}`, email)
	w := do(r, http.MethodPost, "/customers", "", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var c shop.CustomerView
	decode(t, w, &c)

	w = do(r, http.MethodPost, "/login", "", fmt.Sprintf(`{"email":%q,"password":"s3cret"}`, email))
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}
	var tok tokenResponse
	decode(t, w, &tok)
	if tok.CustomerID != c.ID || tok.Token == "" {
		t.Fatalf("token inesperado: %+v", tok)
	}
	return c.ID, tok.Token
}

//
// ===== TESTS =====
//

func TestHealthzAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	w := do(r, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("http_requests_total")) {
		t.Fatalf("metrics sin http_requests_total: status=%d", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "ana@example.com")

	w := do(r, http.MethodPost, "/login", "", `{"email":"ana@example.com","password":"nope"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("esperaba 401, got %d", w.Code)
	}
}

// POST /customers: duplicado ⇒ 409, payload inválido ⇒ 400
func TestCreateCustomer_ConflictAndInvalid(t *testing.T) {
	r := newTestRouter(t)
	register(t, r, "ana@example.com")

	{
		w := do(r, http.MethodPost, "/customers", "", `{"name":"B","email":"ana@example.com","password":"x","address":"y"}`)
		if w.Code != http.StatusConflict {
			t.Fatalf("esperaba 409, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodPost, "/customers", "", `{"name":"B","email":"not-an-email","password":"x","address":"y"}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
		}
	}
}

// Mutaciones sin token ⇒ 401; token de otro cliente ⇒ 403; recurso inexistente ⇒ 404 antes que 403
func TestAuthorizationOrder(t *testing.T) {
	r := newTestRouter(t)
	owner, ownerTok := register(t, r, "owner@example.com")
	_, otherTok := register(t, r, "other@example.com")

	path := fmt.Sprintf("/customers/%d/services", owner)
	{
		w := do(r, http.MethodPost, path, "", `{"kind":"repair"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("esperaba 401, got %d", w.Code)
		}
	}
	{
		w := do(r, http.MethodPost, path, otherTok, `{"kind":"repair"}`)
		if w.Code != http.StatusForbidden {
			t.Fatalf("esperaba 403, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodDelete, path+"/999", otherTok, "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("esperaba 404, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodPost, path, ownerTok, `{"kind":"repair"}`)
		if w.Code != http.StatusCreated {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
}

// Flujo de reparación: pending → in_progress → completed → pending
func TestRepairFlow(t *testing.T) {
	r := newTestRouter(t)
	id, tok := register(t, r, "ana@example.com")

	w := do(r, http.MethodPost, fmt.Sprintf("/customers/%d/services", id), tok, `{"kind":"repair"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var sr shop.ServiceView
	decode(t, w, &sr)

	base := fmt.Sprintf("/customers/%d/services/%d/repairs", id, sr.ID)
	w = do(r, http.MethodPost, base, tok, `{"description":"pantalla rota","status":"pending"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var rep shop.RepairView
	decode(t, w, &rep)
	one := fmt.Sprintf("%s/%d", base, rep.ID)

	{
		w := do(r, http.MethodPatch, one, tok, `{"status":"in_progress"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
		var got shop.RepairView
		decode(t, w, &got)
		if got.StartDate == nil || got.FinishedDate != nil {
			t.Fatalf("in_progress: fechas inesperadas %+v", got)
		}
	}
	{
		w := do(r, http.MethodPatch, one, tok, `{"status":"completed"}`)
		var got shop.RepairView
		decode(t, w, &got)
		if got.StartDate == nil || got.FinishedDate == nil {
			t.Fatalf("completed: fechas inesperadas %+v", got)
		}
	}
	{
		w := do(r, http.MethodPatch, one, tok, `{"status":"pending"}`)
		var got shop.RepairView
		decode(t, w, &got)
		if got.StartDate != nil || got.FinishedDate != nil {
			t.Fatalf("pending: fechas inesperadas %+v", got)
		}
	}
	// patch vacío ⇒ 400
	{
		w := do(r, http.MethodPatch, one, tok, `{}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
		}
	}
	// items sobre un servicio de reparación ⇒ 400 (tipo incorrecto)
	{
		w := do(r, http.MethodGet, fmt.Sprintf("/customers/%d/services/%d/items", id, sr.ID), "", "")
		if w.Code != http.StatusBadRequest {
			t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodDelete, one, tok, "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
}

// Catálogo + venta: variante duplicada ⇒ 409; borrar producto elimina el ítem
func TestSaleFlow_ProductCascade(t *testing.T) {
	r := newTestRouter(t)
	id, tok := register(t, r, "ana@example.com")

	w := do(r, http.MethodPost, "/products", tok, `{"name":"Teclado","description":"mecánico","price":"149.90","stock_quantity":3}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var p shop.ProductView
	decode(t, w, &p)

	w = do(r, http.MethodPost, fmt.Sprintf("/products/%d/variants", p.ID), tok, `{"size":"M","color":"negro","stock_quantity":1}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var v shop.VariantView
	decode(t, w, &v)

	w = do(r, http.MethodPost, fmt.Sprintf("/customers/%d/services", id), tok, `{"kind":"sale"}`)
	var sr shop.ServiceView
	decode(t, w, &sr)

	items := fmt.Sprintf("/customers/%d/services/%d/items", id, sr.ID)
	body := fmt.Sprintf(`{"product_variant_id":%d,"quantity":1,"unit_price":"149.90"}`, v.ID)
	w = do(r, http.MethodPost, items, tok, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var it shop.ItemRequestView
	decode(t, w, &it)

	{
		w := do(r, http.MethodPost, items, tok, body)
		if w.Code != http.StatusConflict {
			t.Fatalf("esperaba 409, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodPatch, fmt.Sprintf("%s/%d", items, it.ID), tok, `{"product_variant_id":999}`)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("esperaba 400, got %d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodDelete, fmt.Sprintf("/products/%d", p.ID), tok, "")
		if w.Code != http.StatusNoContent {
			t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
		}
	}
	{
		w := do(r, http.MethodGet, fmt.Sprintf("%s/%d", items, it.ID), "", "")
		if w.Code != http.StatusNotFound {
			t.Fatalf("esperaba 404, got %d body=%s", w.Code, w.Body.String())
		}
	}
}

func TestBadPathParam(t *testing.T) {
	r := newTestRouter(t)
	w := do(r, http.MethodGet, "/customers/abc", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("esperaba 400, got %d", w.Code)
	}
}
