package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"rld/pkg/types"
)

type mockService struct {
	models     []types.Model
	status     types.StatusResponse
	ready      bool
	err        error
	lastID     string
	lastPack   types.PackRequest
	lastKind   string
	forwardCtx context.Context
}

func (m *mockService) ListModels() []types.Model    { return append([]types.Model(nil), m.models...) }
func (m *mockService) Status() types.StatusResponse { return m.status }
func (m *mockService) Ready() bool                  { return m.ready }
func (m *mockService) Describe(id string) (types.SpaceResponse, error) {
	m.lastID = id
	return types.SpaceResponse{ID: id, Size: 3}, m.err
}
func (m *mockService) Pack(id string, req types.PackRequest) (types.PackResponse, error) {
	m.lastID, m.lastPack = id, req
	if m.err != nil {
		return types.PackResponse{}, m.err
	}
	return types.PackResponse{Flat: []float32{1, 2, 3}, Shape: []int{3}}, nil
}
func (m *mockService) Unpack(id string, req types.UnpackRequest) (types.UnpackResponse, error) {
	m.lastID = id
	if m.err != nil {
		return types.UnpackResponse{}, m.err
	}
	return types.UnpackResponse{Obs: map[string]any{"pos": []float32{1, 2}}}, nil
}
func (m *mockService) Forward(ctx context.Context, id string, req types.ForwardRequest) (types.ForwardResponse, error) {
	m.lastID, m.forwardCtx = id, ctx
	if m.err != nil {
		return types.ForwardResponse{}, m.err
	}
	return types.ForwardResponse{CallID: "c1", Output: []float32{6, 3}, Shape: []int{2}, Device: "cpu"}, nil
}
func (m *mockService) Baseline(id, kind string) (types.BaselineResponse, error) {
	m.lastID, m.lastKind = id, kind
	if m.err != nil {
		return types.BaselineResponse{}, m.err
	}
	return types.BaselineResponse{Kind: "zeros", Flat: []float32{0, 0, 0}}, nil
}

type mockHTTPError struct {
	msg  string
	code int
}

func (e mockHTTPError) Error() string   { return e.msg }
func (e mockHTTPError) StatusCode() int { return e.code }

func post(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func get(h http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestModelsHandler(t *testing.T) {
	svc := &mockService{models: []types.Model{{ID: "m1"}, {ID: "m2"}}}
	w := get(NewMux(svc), "/models")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content-type=%s", ct)
	}
	var body types.ModelsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(body.Models) != 2 {
		t.Fatalf("models len=%d", len(body.Models))
	}
}

func TestStatusHandler(t *testing.T) {
	svc := &mockService{status: types.StatusResponse{Models: 2, ForwardCalls: 7}}
	w := get(NewMux(svc), "/status")
	var body types.StatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("json: %v", err)
	}
	if body.Models != 2 || body.ForwardCalls != 7 {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestReadyz(t *testing.T) {
	if w := get(NewMux(&mockService{ready: true}), "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	w := get(NewMux(&mockService{}), "/readyz")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "no models") {
		t.Fatalf("status=%d body=%q", w.Code, w.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	if w := get(NewMux(&mockService{}), "/healthz"); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestSpaceAndBaselineRoutes(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	if w := get(h, "/models/cartpole/space"); w.Code != http.StatusOK || svc.lastID != "cartpole" {
		t.Fatalf("space status=%d id=%q", w.Code, svc.lastID)
	}
	w := get(h, "/models/cartpole/baseline?kind=midpoint")
	if w.Code != http.StatusOK || svc.lastKind != "midpoint" {
		t.Fatalf("baseline status=%d kind=%q", w.Code, svc.lastKind)
	}
}

func TestPackRoute(t *testing.T) {
	svc := &mockService{}
	w := post(t, NewMux(svc), "/models/posvel/pack", `{"obs":{"pos":[1,2],"vel":[3]}}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if svc.lastID != "posvel" {
		t.Fatalf("id=%q", svc.lastID)
	}
	obs, ok := svc.lastPack.Obs.(map[string]any)
	if !ok || len(obs) != 2 {
		t.Fatalf("decoded obs=%#v", svc.lastPack.Obs)
	}
	if got := strings.TrimSpace(w.Body.String()); got != `{"flat":[1,2,3],"shape":[3]}` {
		t.Fatalf("body=%s", got)
	}
}

func TestUnpackAndForwardRoutes(t *testing.T) {
	svc := &mockService{}
	h := NewMux(svc)
	if w := post(t, h, "/models/posvel/unpack", `{"flat":[1,2,3]}`); w.Code != http.StatusOK {
		t.Fatalf("unpack status=%d", w.Code)
	}
	w := post(t, h, "/models/posvel/forward", `{"flat":[1,2,3]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("forward status=%d", w.Code)
	}
	var resp types.ForwardResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.CallID != "c1" {
		t.Fatalf("resp=%+v err=%v", resp, err)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", mockHTTPError{"model not found: x", http.StatusNotFound}, http.StatusNotFound},
		{"bad input", mockHTTPError{"missing key", http.StatusBadRequest}, http.StatusBadRequest},
		{"unsupported", mockHTTPError{"unsupported space kind", http.StatusUnprocessableEntity}, http.StatusUnprocessableEntity},
		{"wrapped", errors.Join(errors.New("ctx"), mockHTTPError{"gone", http.StatusNotFound}), http.StatusNotFound},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"generic", io.EOF, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(t, NewMux(&mockService{err: tc.err}), "/models/m/pack", `{"obs":[1]}`)
			if w.Code != tc.want {
				t.Fatalf("status=%d want %d", w.Code, tc.want)
			}
			var body types.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body.Code != tc.want || body.Error == "" {
				t.Fatalf("body=%s err=%v", w.Body.String(), err)
			}
		})
	}
}

func TestBadJSON(t *testing.T) {
	if w := post(t, NewMux(&mockService{}), "/models/m/forward", "not-json"); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestUnsupportedMediaType(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/models/m/pack", bytes.NewBufferString(`{"obs":[1]}`))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestContentTypeCaseInsensitive(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/models/m/pack", bytes.NewBufferString(`{"obs":[1]}`))
	req.Header.Set("Content-Type", "Application/JSON; charset=utf-8")
	w := httptest.NewRecorder()
	NewMux(&mockService{}).ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with mixed-case content-type, got %d", w.Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	SetMaxBodyBytes(64)
	defer SetMaxBodyBytes(0)
	body := `{"flat":[` + strings.Repeat("1,", 100) + `1]}`
	if w := post(t, NewMux(&mockService{}), "/models/m/unpack", body); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestForwardTimeoutAndBaseContext(t *testing.T) {
	SetForwardTimeout(time.Minute)
	defer SetForwardTimeout(0)
	svc := &mockService{}
	post(t, NewMux(svc), "/models/m/forward", `{"flat":[1]}`)
	if svc.forwardCtx == nil {
		t.Fatalf("forward not called")
	}
	if _, ok := svc.forwardCtx.Deadline(); !ok {
		t.Fatalf("expected forward context to carry a deadline")
	}
}

func TestCORSAndSecurityHeaders(t *testing.T) {
	SetCORSOptions(true, []string{"*"}, nil, nil)
	defer SetCORSOptions(false, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/models", nil)
	req.Header.Set("Origin", "http://example.com")
	w := httptest.NewRecorder()
	NewMux(&mockService{ready: true}).ServeHTTP(w, req)
	if got := w.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options=nosniff, got %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Fatalf("expected Access-Control-Allow-Origin to be set")
	}
}

func TestLogsWithZerolog(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	h := NewMux(&mockService{})
	if w := post(t, h, "/models/posvel/pack?log=info", `{"obs":[1]}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(buf.String(), `"op":"pack"`) || !strings.Contains(buf.String(), `"model":"posvel"`) {
		t.Fatalf("log=%s", buf.String())
	}
	buf.Reset()
	post(t, h, "/models/posvel/forward?log=off", `{"flat":[1]}`)
	if buf.Len() != 0 {
		t.Fatalf("expected no log output, got %s", buf.String())
	}
}
