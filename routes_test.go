package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/azstreams/dcrbuilder/dcr"
	"github.com/azstreams/dcrbuilder/sharecache"
)

func newTestServer(cfg sharecache.Config) *server {
	s := newServer(sharecache.New(cfg))
	s.setupRoutes()
	return s
}

func doJSON(s *server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestShareStoreAndGet(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "POST", "/api/dcr", `{"json":"{\"kind\":\"Direct\"}"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		ID string `json:"id"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)

	w = doJSON(s, "GET", "/api/dcr/"+res.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"kind":"Direct"}`, w.Body.String())
}

func TestShareStoreMissingJson(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "POST", "/api/dcr", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing json\n", w.Body.String())

	w = doJSON(s, "POST", "/api/dcr", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShareStoreTooLarge(t *testing.T) {
	s := newTestServer(sharecache.Config{MaxEntryBytes: 32})

	body, _ := json.Marshal(map[string]string{"json": strings.Repeat("x", 64)})
	w := doJSON(s, "POST", "/api/dcr", string(body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestShareGetUnknown(t *testing.T) {
	s := newTestServer(sharecache.Config{})
	w := doJSON(s, "GET", "/api/dcr/does-not-exist", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found\n", w.Body.String())
}

func TestShareUpdate(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "PUT", "/api/dcr/fresh-id", `{"json":"{\"v\":1}"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(s, "GET", "/api/dcr/fresh-id", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"v":1}`, w.Body.String())

	w = doJSON(s, "PUT", "/api/dcr/fresh-id", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInferEndpoint(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	body, _ := json.Marshal(map[string]string{
		"json": `{"name":"John","age":30,"created":"2024-01-15T10:30:00Z"}`,
	})
	w := doJSON(s, "POST", "/api/infer", string(body))
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Columns []dcr.Column `json:"columns"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.Columns, 3)
	assert.Equal(t, "age", res.Columns[0].Name)
	assert.Equal(t, dcr.TypeInt, res.Columns[0].Type)
	assert.Equal(t, dcr.TypeDatetime, res.Columns[1].Type)
}

func TestInferEndpointInvalidJson(t *testing.T) {
	s := newTestServer(sharecache.Config{})
	w := doJSON(s, "POST", "/api/infer", `{"json":"{broken"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid json")
}

func TestValidateEndpoint(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "POST", "/api/validate", `{"name":"","location":""}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Errors []dcr.ValidationError `json:"errors"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Errors)
}

func validFormJSON(t *testing.T) string {
	t.Helper()
	f := &dcr.FormData{
		Name:     "my-app-logs",
		Location: "eastus",
		StreamDeclarations: map[string]dcr.StreamDeclaration{
			"Custom-AppLogs": {Columns: []dcr.Column{{ID: "c1", Name: "Message", Type: dcr.TypeString}}},
		},
		Destinations: dcr.Destinations{LogAnalytics: []dcr.LogAnalyticsDestination{{
			ID:                "d1",
			SubscriptionID:    "12345678-1234-1234-1234-123456789abc",
			ResourceGroupName: "rg-logs",
			WorkspaceName:     "law-prod",
			Name:              "lawDest",
		}}},
		DataFlows: []dcr.DataFlow{{
			ID:           "f1",
			Streams:      []string{"Custom-AppLogs"},
			Destinations: []string{"lawDest"},
			TransformKQL: "source",
			OutputStream: "Custom-AppLogs_CL",
		}},
	}
	bs, err := json.Marshal(f)
	assert.Nil(t, err)
	return string(bs)
}

func TestGenerateEndpoint(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "POST", "/api/generate", validFormJSON(t))
	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		DCR         json.RawMessage `json:"dcr"`
		ARMTemplate json.RawMessage `json:"armTemplate"`
		Bicep       string          `json:"bicep"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Contains(t, string(res.DCR), `"kind": "Direct"`)
	assert.Contains(t, string(res.ARMTemplate), "Microsoft.Insights/dataCollectionRules")
	assert.Contains(t, res.Bicep, "resource dcr")
}

func TestGenerateEndpointBlockedByValidation(t *testing.T) {
	s := newTestServer(sharecache.Config{})

	w := doJSON(s, "POST", "/api/generate", `{"name":"","location":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var res struct {
		Errors []dcr.ValidationError `json:"errors"`
	}
	assert.Nil(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.NotEmpty(t, res.Errors)
}

func TestOpenAPIEndpoint(t *testing.T) {
	s := newTestServer(sharecache.Config{})
	w := doJSON(s, "GET", "/openapi.json", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"/api/dcr"`)
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(sharecache.Config{})
	doJSON(s, "POST", "/api/dcr", `{"json":"{}"}`)

	w := doJSON(s, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dcr_share_stored_total 1")
}

func TestMetricsCacheGauges(t *testing.T) {
	s := newTestServer(sharecache.Config{})
	doJSON(s, "POST", "/api/dcr", `{"json":"{\"v\":1}"}`)

	w := doJSON(s, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "dcr_share_cache_entries 1")
	assert.Contains(t, w.Body.String(), "dcr_share_cache_bytes 7")
}