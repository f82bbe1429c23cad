package main

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/ecomlogix/dispatch-cli/internal/config"
	"github.com/ecomlogix/dispatch-cli/internal/pipeline"
)

func serveTestConfig() *config.Config {
	return &config.Config{
		Tables: config.TablesConfig{
			Statuses: []config.StatusSet{
				{Category: "Delivered", Codes: []string{"DEL_SIG"}},
				{Category: "OFD Scans", Codes: []string{"ITR_OFD"}},
				{Category: "Return", Codes: []string{"RET_TOR"}},
			},
			Services: []config.ServiceRule{
				{Prefix: "YYZ-SD", Tier: "Same Day"},
				{Prefix: "YYZ-", Tier: "Next Day"},
				{Prefix: "YUL-", Tier: "Montreal"},
			},
		},
		Rates: config.RatesConfig{
			Tiers: []config.TierRate{
				{Tier: "Next Day", Rate: "2.20"},
				{Tier: "Same Day", Rate: "3.50"},
				{Tier: "Montreal", Rate: "3.00"},
			},
		},
		Pipeline: config.PipelineConfig{Concurrency: 2},
		Server:   config.ServerConfig{MaxUploadMB: 10, RequestsPerMinute: 60},
	}
}

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	cfg = serveTestConfig()
	p, err := pipeline.New(cfg)
	require.NoError(t, err)
	return newServeMux(p)
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "scans.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func TestServeMux_Health(t *testing.T) {
	mux := newTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestServeMux_GenerateReport(t *testing.T) {
	mux := newTestMux(t)

	csv := `Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City,Ship To Address
PKG-001,ITR_OFD,YYZ-1,Avery Cole,03/10/2025 08:15:00,Toronto,123 King St W
PKG-001,DEL_SIG,YYZ-1,Avery Cole,03/10/2025 12:30:45,Toronto,123 King St W
`
	body, contentType := multipartCSV(t, csv)
	req := httptest.NewRequest(http.MethodPost, "/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Report-ID"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")

	f, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 3)
	assert.Equal(t, "Next_Day", f.Sheets[0].Name)
	require.Len(t, f.Sheets[0].Rows, 2)
	assert.Equal(t, "Avery Cole", f.Sheets[0].Rows[1].Cells[1].String())
}

func TestServeMux_MissingFileField(t *testing.T) {
	mux := newTestMux(t)

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader("not multipart"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeMux_MissingColumn(t *testing.T) {
	mux := newTestMux(t)

	csv := `Item ID,Status,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City
PKG-001,ITR_OFD,Avery Cole,03/10/2025 08:15:00,Toronto
`
	body, contentType := multipartCSV(t, csv)
	req := httptest.NewRequest(http.MethodPost, "/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route_Code")
}

func TestShutdownOnDone_DrainsInFlightRequests(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("GET /slow", func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		io.WriteString(w, "done")
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := &http.Server{Handler: mux}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	type result struct {
		body string
		err  error
	}
	results := make(chan result, 1)
	go func() {
		resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
		if err != nil {
			results <- result{err: err}
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		results <- result{body: string(body), err: err}
	}()
	<-started

	// The signal context is already done when the drain begins; the
	// in-flight request must still complete.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	drained := make(chan struct{})
	go func() {
		shutdownOnDone(ctx, srv)
		close(drained)
	}()

	close(release)
	got := <-results
	require.NoError(t, got.err)
	assert.Equal(t, "done", got.body)

	<-drained
	assert.ErrorIs(t, <-serveErr, http.ErrServerClosed)
}

func TestServeMux_RateLimit(t *testing.T) {
	cfg = serveTestConfig()
	cfg.Server.RequestsPerMinute = 1
	p, err := pipeline.New(cfg)
	require.NoError(t, err)
	mux := newServeMux(p)

	csv := `Item ID,Status,Route Code,Delivery Driver Name,ScanCode DateTime (MM/DD/YYYY HH:mm:ss),Delivery City,Ship To Address
PKG-001,ITR_OFD,YYZ-1,Avery Cole,03/10/2025 08:15:00,Toronto,123 King St W
`
	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		body, contentType := multipartCSV(t, csv)
		req := httptest.NewRequest(http.MethodPost, "/reports", body)
		req.Header.Set("Content-Type", contentType)

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, "request %d", i)
	}
}
