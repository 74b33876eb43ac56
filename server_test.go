package companylookup

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/aftermarketpl/companylookup/pkg/ceidg"
	"github.com/aftermarketpl/companylookup/pkg/companydata"
	"github.com/aftermarketpl/companylookup/pkg/vat"
)

type fakeVatTransport struct {
	res  *vat.StatusResponse
	err  error
	nip  string
	date string
}

func (t *fakeVatTransport) CheckNip(nip string) (*vat.StatusResponse, error) {
	t.nip = nip
	return t.res, t.err
}

func (t *fakeVatTransport) CheckNipOnDate(nip string, date string) (*vat.StatusResponse, error) {
	t.nip = nip
	t.date = date
	return t.res, t.err
}

type fakeCeidgTransport struct {
	payload string
	err     error
	queries []ceidg.Query
}

func (t *fakeCeidgTransport) GetMigrationData(q ceidg.Query) (string, error) {
	t.queries = append(t.queries, q)
	return t.payload, t.err
}

func getServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)
	s, err := New(Config{})
	if err != nil {
		t.Fatalf("unable to create server: %v", err)
	}
	return s
}

func doRequest(s *Server, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.e.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s := getServer(t)
	w := doRequest(s, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestLookupVat(t *testing.T) {
	s := getServer(t)
	transport := &fakeVatTransport{res: &vat.StatusResponse{Code: vat.CodeActive}}
	s.vat.SetTransport(transport)

	w := doRequest(s, "/api/v1/lookup/vat/728-269-73-80")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}

	var data companydata.CompanyData
	if err := json.Unmarshal(w.Body.Bytes(), &data); err != nil {
		t.Fatalf("unable to decode response: %v", err)
	}
	assert.True(t, data.Valid)
	assert.Equal(t, "7282697380", transport.nip)
}

func TestLookupVatByDate(t *testing.T) {
	s := getServer(t)
	transport := &fakeVatTransport{res: &vat.StatusResponse{Code: "N"}}
	s.vat.SetTransport(transport)

	w := doRequest(s, "/api/v1/lookup/vat/7282697380?date=2026-05-01")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2026-05-01", transport.date)
}

func TestLookupValidationError(t *testing.T) {
	s := getServer(t)
	w := doRequest(s, "/api/v1/lookup/vat/7282697381")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "checksum")
}

func TestLookupUnsupportedType(t *testing.T) {
	s := getServer(t)
	w := doRequest(s, "/api/v1/lookup/vat/7282697380?type=krs")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "not supported")
}

func TestLookupUnknownSource(t *testing.T) {
	s := getServer(t)
	w := doRequest(s, "/api/v1/lookup/nosuch/7282697380")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupUpstreamUnavailable(t *testing.T) {
	s := getServer(t)
	s.vat.SetTransport(&fakeVatTransport{err: errors.New("connection refused")})

	w := doRequest(s, "/api/v1/lookup/vat/7282697380")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSearchCeidg(t *testing.T) {
	s := getServer(t)
	transport := &fakeCeidgTransport{payload: "<WynikWyszukiwania></WynikWyszukiwania>"}
	s.ceidg.SetTransport(transport)

	w := doRequest(s, "/api/v1/search/ceidg?name=ACME")
	assert.Equal(t, http.StatusOK, w.Code)
	if assert.Len(t, transport.queries, 1) {
		assert.Equal(t, []string{"ACME"}, transport.queries[0].Name)
	}
}

func TestSearchCeidgNoParameters(t *testing.T) {
	s := getServer(t)
	s.ceidg.SetTransport(&fakeCeidgTransport{})

	w := doRequest(s, "/api/v1/search/ceidg")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRequestIdEchoed(t *testing.T) {
	s := getServer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	s.e.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))

	w = doRequest(s, "/healthz")
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
