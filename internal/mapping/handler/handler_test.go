package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"colmap-service/internal/config"
	"colmap-service/internal/mapping/loader"
	"colmap-service/internal/mapping/model"
)

func multipartCSV(t *testing.T, filename, body string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, body)
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func testHandler(t *testing.T) http.HandlerFunc {
	t.Helper()
	mapping, err := loader.LoadDefault()
	require.NoError(t, err)
	cfg := config.Config{MaxUploadMB: 10, MinConfidence: 0.7}
	return MapColumns(cfg, mapping, zerolog.Nop())
}

func TestMapColumnsEndpoint(t *testing.T) {
	h := testHandler(t)

	csv := "Asset ID,IP Adress,Zebra Quotient\nA-001,10.0.0.5,x\n"
	buf, ctype := multipartCSV(t, "inventory.csv", csv, nil)

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var resp mapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 3, resp.Headers)
	assert.Equal(t, 1, resp.Rows)
	assert.Contains(t, resp.Unmapped, "Zebra Quotient")
	assert.NotEmpty(t, resp.Warnings)

	byField := make(map[string]model.MappingResult)
	for _, r := range resp.Results {
		byField[r.TargetField] = r
	}
	require.Contains(t, byField, "uuid")
	require.Contains(t, byField, "ip_address")
	assert.True(t, byField["uuid"].ExactMatch)
	assert.False(t, byField["ip_address"].ExactMatch)
}

func TestMapColumnsEndpointValueValidation(t *testing.T) {
	h := testHandler(t)

	csv := "IP Address\n999.1.1.1\n10.0.0.5\n"
	buf, ctype := multipartCSV(t, "inventory.csv", csv, map[string]string{"validate_values": "true"})

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp mapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ValueErrors, 1)
	assert.Contains(t, resp.ValueErrors[0], "999.1.1.1")
}

func TestMapColumnsEndpointScope(t *testing.T) {
	h := testHandler(t)

	csv := "Severity\nhigh\n"
	buf, ctype := multipartCSV(t, "poam.csv", csv, map[string]string{"doc_type": "poam"})

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp mapResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Equal(t, model.SourcePoam, resp.Results[0].SourceType)
}

func TestMapColumnsEndpointBadScope(t *testing.T) {
	h := testHandler(t)

	buf, ctype := multipartCSV(t, "inventory.csv", "A\n1\n", map[string]string{"doc_type": "grimoire"})

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMapColumnsEndpointMissingFile(t *testing.T) {
	h := testHandler(t)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	require.NoError(t, mw.WriteField("header_row", "1"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMapColumnsEndpointUnsupportedFile(t *testing.T) {
	h := testHandler(t)

	buf, ctype := multipartCSV(t, "notes.txt", "whatever", nil)

	req := httptest.NewRequest(http.MethodPost, "/map", buf)
	req.Header.Set("Content-Type", ctype)
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
