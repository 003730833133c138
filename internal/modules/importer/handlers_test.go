package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arniesaha/portfolio-tracker/pkg/logger"
)

func newTestHandlers(svc *Service) *Handlers {
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return NewHandlers(svc, log)
}

type uploadFile struct {
	name    string
	content []byte
}

func multipartUpload(t *testing.T, target, platform string, files []uploadFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("platform", platform))
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHandlers_HandlePreview(t *testing.T) {
	h := newTestHandlers(newTestService(newFakeHoldingStore(), &fakeTransactionStore{}))

	req := multipartUpload(t, "/api/import/preview", PlatformTDDirect, []uploadFile{
		{name: "activity.csv", content: []byte(tdSampleCSV)},
	})
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview ImportPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, 3, preview.TotalTransactions)
	assert.Equal(t, 2, preview.BuyTransactions)
	assert.Equal(t, 1, preview.SellTransactions)
}

func TestHandlers_HandlePreview_UnknownPlatform(t *testing.T) {
	h := newTestHandlers(newTestService(newFakeHoldingStore(), &fakeTransactionStore{}))

	req := multipartUpload(t, "/api/import/preview", "questrade", []uploadFile{
		{name: "activity.csv", content: []byte(tdSampleCSV)},
	})
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Uploads past the multipart memory cap are backed by temp files, which
// become unreadable once closed. The handlers must keep the files open
// until the service has consumed them.
func TestHandlers_HandlePreview_LargeUploadSpillsToDisk(t *testing.T) {
	h := newTestHandlers(newTestService(newFakeHoldingStore(), &fakeTransactionStore{}))

	var csvBuf bytes.Buffer
	csvBuf.WriteString("Date,Activity,Symbol,Description,Quantity,Price,Commission,Currency\n")
	csvBuf.WriteString("2024-04-09,Buy,NVDA,NVIDIA CORP,33,132.9006,0,USD\n")
	// Dividend rows are ignored by the parser; they only inflate the file
	// past the in-memory threshold.
	padding := []byte("2024-04-10,Div,NVDA,NVIDIA CORP,0,0.25,0,USD\n")
	for csvBuf.Len() <= maxUploadBytes {
		csvBuf.Write(padding)
	}

	req := multipartUpload(t, "/api/import/preview", PlatformTDDirect, []uploadFile{
		{name: "activity.csv", content: csvBuf.Bytes()},
	})
	rec := httptest.NewRecorder()
	h.HandlePreview(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var preview ImportPreview
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&preview))
	assert.Equal(t, 1, preview.TotalTransactions)
	assert.Equal(t, []string{"NVDA"}, preview.NewSymbols)
	assert.Empty(t, preview.Warnings)
}

func TestHandlers_HandleImport(t *testing.T) {
	holdings := newFakeHoldingStore()
	txns := &fakeTransactionStore{}
	h := newTestHandlers(newTestService(holdings, txns))

	req := multipartUpload(t, "/api/import", PlatformTDDirect, []uploadFile{
		{name: "activity.csv", content: []byte(tdSampleCSV)},
	})
	rec := httptest.NewRecorder()
	h.HandleImport(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&result))
	assert.Equal(t, 3, result.TransactionsImported)
	assert.Len(t, txns.txns, 3)
}
