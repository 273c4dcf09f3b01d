package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"support-lookup/internal/apperr"
	"support-lookup/internal/calls"
	"support-lookup/internal/clock"
	"support-lookup/internal/customers"
	"support-lookup/internal/protocols"
	"support-lookup/pkg/logger"

	"github.com/gin-gonic/gin"
)

var testNow = time.Date(2024, 1, 16, 12, 0, 0, 0, time.UTC)

type fixture struct {
	router     *gin.Engine
	callsRepo  *calls.MemoryRepo
	protoRepo  *protocols.MemoryRepo
	customerDB *customers.MemoryRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	loc, err := clock.LoadZone(clock.DefaultZone)
	if err != nil {
		t.Fatalf("zone: %v", err)
	}

	f := fixture{
		callsRepo:  calls.NewMemoryRepo(),
		protoRepo:  protocols.NewMemoryRepo(),
		customerDB: customers.NewMemoryRepo(),
	}
	h := Handlers{
		Customers:   customers.NewService(f.customerDB),
		Calls:       calls.NewService(f.callsRepo),
		Protocols:   protocols.NewService(f.protoRepo, loc),
		Clock:       clock.Fixed(testNow),
		WindowHours: 48,
	}
	f.router = gin.New()
	h.Register(f.router)
	return f
}

func (f fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestGetCustomer(t *testing.T) {
	f := newFixture(t)
	f.customerDB.Put(map[string]any{"cpf": "12345678900", "nome": "Maria", "fatura_aberta": int64(1)})

	w := f.do(http.MethodGet, "/cliente?cpf=12345678900", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["fatura_aberta"] != true || body["nome"] != "Maria" || body["cpf"] != "12345678900" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestGetCustomer_DoesNotLogTaxID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	repo := customers.NewMemoryRepo()
	repo.Put(map[string]any{"cpf": "12345678900", "fatura_aberta": int64(1)})

	r := gin.New()
	r.Use(logger.Middleware(logger.NewWithWriter("dev", &buf)))
	Handlers{Customers: customers.NewService(repo)}.Register(r)

	for _, target := range []string{"/cliente?cpf=12345678900", "/cliente?cpf=98765432100"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	}
	if buf.Len() == 0 {
		t.Fatalf("expected request log lines")
	}
	if strings.Contains(buf.String(), "12345678900") || strings.Contains(buf.String(), "98765432100") {
		t.Fatalf("cpf leaked into logs: %s", buf.String())
	}
}

func TestGetCustomer_Errors(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodGet, "/cliente", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(decode(t, w)) != 1 {
		t.Fatalf("expected single-field error body")
	}

	w = f.do(http.MethodGet, "/cliente?cpf=000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestRegisterCall_EndToEnd(t *testing.T) {
	f := newFixture(t)

	w := f.do(http.MethodPost, "/registrar-chamada", `{"protocolo":"P1","id_chamada":"C1"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["protocolo"] != "P1" || body["id_chamada"] != "C1" || body["id"] == nil {
		t.Fatalf("unexpected body: %v", body)
	}

	rows := f.callsRepo.Rows()
	if len(rows) != 1 || rows[0].Protocol != "P1" || rows[0].CallID != "C1" || rows[0].ID == 0 {
		t.Fatalf("unexpected stored rows: %+v", rows)
	}

	w = f.do(http.MethodPost, "/registrar-chamada", `{"protocolo":"P2"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if len(f.callsRepo.Rows()) != 1 {
		t.Fatalf("expected no insert on validation failure")
	}

	w = f.do(http.MethodPost, "/registrar-chamada", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid json, got %d", w.Code)
	}
}

func TestGetProtocol_Projection(t *testing.T) {
	f := newFixture(t)
	custom := "vip"
	f.protoRepo.Add(protocols.ProtocolDetail{
		Protocol:    "P1",
		CreatedAt:   time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		PhoneNumber: "11999990000",
		Custom1:     &custom,
	})

	w := f.do(http.MethodGet, "/consultar-protocolo/P1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)

	want := []string{"protocolo", "data_criacao", "esta_no_prazo", "numero_telefone",
		"campo_custom_1", "campo_custom_2", "campo_custom_3", "campo_custom_4"}
	if len(body) != len(want) {
		t.Fatalf("expected %d fields, got %v", len(want), body)
	}
	for _, k := range want {
		if _, ok := body[k]; !ok {
			t.Fatalf("missing field %q in %v", k, body)
		}
	}
	if body["esta_no_prazo"] != true {
		t.Fatalf("expected on time at 24h")
	}
	if !strings.HasPrefix(body["data_criacao"].(string), "15/01/2024 09:00:00") {
		t.Fatalf("unexpected data_criacao %v", body["data_criacao"])
	}
	if body["campo_custom_1"] != "vip" || body["campo_custom_2"] != nil {
		t.Fatalf("unexpected custom fields: %v", body)
	}
}

func TestGetProtocol_Overdue(t *testing.T) {
	f := newFixture(t)
	f.protoRepo.Add(protocols.ProtocolDetail{Protocol: "OLD", CreatedAt: testNow.Add(-49 * time.Hour), PhoneNumber: "1"})

	body := decode(t, f.do(http.MethodGet, "/consultar-protocolo/OLD", ""))
	if body["esta_no_prazo"] != false {
		t.Fatalf("expected overdue, got %v", body)
	}
}

type countingResolver struct {
	getErr    error
	describes int
}

func (r *countingResolver) GetByProtocol(ctx context.Context, protocol string) (protocols.ProtocolDetail, error) {
	return protocols.ProtocolDetail{}, r.getErr
}

func (r *countingResolver) FindActiveByPhone(ctx context.Context, phone string, now time.Time, windowHours int) (protocols.ProtocolDetail, error) {
	return protocols.ProtocolDetail{}, r.getErr
}

func (r *countingResolver) Describe(d protocols.ProtocolDetail, now time.Time, windowHours int) protocols.DetailView {
	r.describes++
	return protocols.DetailView{}
}

func TestGetProtocol_NotFoundSkipsDeadlinePolicy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	res := &countingResolver{getErr: apperr.ErrNotFound}
	r := gin.New()
	Handlers{Protocols: res, Clock: clock.Fixed(testNow)}.Register(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/consultar-protocolo/NOPE", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if res.describes != 0 {
		t.Fatalf("deadline policy must not run for a missing protocol")
	}
}

func TestStoreErrorIsGeneric500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	res := &countingResolver{getErr: apperr.Store("select protocolo", errors.New("dial tcp 10.0.0.5:5432: connection refused"))}
	r := gin.New()
	Handlers{Protocols: res}.Register(r)

	for _, target := range []string{"/consultar-protocolo/P1", "/consultar-por-telefone?telefone=11999990000"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", target, w.Code)
		}
		if strings.Contains(w.Body.String(), "10.0.0.5") {
			t.Fatalf("%s: store details leaked: %s", target, w.Body.String())
		}
	}
}

func TestGetActiveProtocolByPhone(t *testing.T) {
	f := newFixture(t)
	for _, d := range []protocols.ProtocolDetail{
		{Protocol: "P-1H", CreatedAt: testNow.Add(-1 * time.Hour), PhoneNumber: "11999990000"},
		{Protocol: "P-10H", CreatedAt: testNow.Add(-10 * time.Hour), PhoneNumber: "11999990000"},
		{Protocol: "P-50H", CreatedAt: testNow.Add(-50 * time.Hour), PhoneNumber: "11999990000"},
		{Protocol: "STALE", CreatedAt: testNow.Add(-50 * time.Hour), PhoneNumber: "11777770000"},
	} {
		f.protoRepo.Add(d)
	}

	w := f.do(http.MethodGet, "/consultar-por-telefone?telefone=11999990000", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := decode(t, w)
	if body["protocolo"] != "P-1H" {
		t.Fatalf("expected P-1H, got %v", body["protocolo"])
	}
	// raw row: creation timestamp is the stored instant, not the display format
	if _, err := time.Parse(time.RFC3339, body["data_criacao"].(string)); err != nil {
		t.Fatalf("expected RFC3339 data_criacao, got %v", body["data_criacao"])
	}

	w = f.do(http.MethodGet, "/consultar-por-telefone?telefone=11777770000", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if _, ok := decode(t, w)["mensagem"]; !ok {
		t.Fatalf("expected informational mensagem body")
	}

	w = f.do(http.MethodGet, "/consultar-por-telefone", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestReadyz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := Handlers{Ready: func(ctx context.Context) error { return errors.New("db down") }}
	r.GET("/readyz", h.Readyz)
	r.GET("/healthz", h.Healthz)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
