package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ecomlogix/dispatch-cli/internal/ingest"
	"github.com/ecomlogix/dispatch-cli/internal/model"
	"github.com/ecomlogix/dispatch-cli/internal/pipeline"
	"github.com/ecomlogix/dispatch-cli/internal/report"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the upload server for dispatch report generation",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := pipeline.New(cfg)
		if err != nil {
			return eris.Wrap(err, "serve: init pipeline")
		}

		mux := newServeMux(p)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go shutdownOnDone(ctx, srv)

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// shutdownTimeout bounds the drain of in-flight report requests.
const shutdownTimeout = 10 * time.Second

// shutdownOnDone drains the server once ctx is canceled. The drain gets its
// own context: the signal context is already done by the time Shutdown runs,
// and passing it would abort in-flight requests instead of draining them.
func shutdownOnDone(ctx context.Context, srv *http.Server) {
	<-ctx.Done()
	zap.L().Info("shutting down server")

	drainCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(drainCtx); err != nil {
		zap.L().Warn("server shutdown", zap.Error(err))
	}
}

// newServeMux builds the upload server routes. Report generation is CPU and
// memory bound (the whole batch is resident during grouping), so uploads are
// throttled rather than queued.
func newServeMux(p *pipeline.Pipeline) *http.ServeMux {
	rpm := cfg.Server.RequestsPerMinute
	if rpm <= 0 {
		rpm = 1
	}
	limiter := rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /reports", func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, `{"error":"too many report requests"}`, http.StatusTooManyRequests)
			return
		}

		reportID := uuid.NewString()
		log := zap.L().With(zap.String("report_id", reportID))

		r.Body = http.MaxBytesReader(w, r.Body, int64(cfg.Server.MaxUploadMB)<<20)
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, `{"error":"multipart field \"file\" is required"}`, http.StatusBadRequest)
			return
		}
		defer file.Close()

		events, err := ingest.ParseScanCSV(file)
		if err != nil {
			log.Warn("serve: upload rejected", zap.String("filename", header.Filename), zap.Error(err))
			writeIngestError(w, err)
			return
		}

		parts, err := p.Process(r.Context(), events)
		if err != nil {
			var schemaErr *model.SchemaViolationError
			if eris.As(err, &schemaErr) {
				log.Warn("serve: schema violation", zap.String("field", schemaErr.Field))
				http.Error(w, fmt.Sprintf(`{"error":"required field %q missing from batch"}`, schemaErr.Field), http.StatusUnprocessableEntity)
				return
			}
			log.Error("serve: pipeline failed", zap.Error(err))
			http.Error(w, `{"error":"report generation failed"}`, http.StatusInternalServerError)
			return
		}

		log.Info("serve: report generated",
			zap.String("filename", header.Filename),
			zap.Int("events", len(events)),
			zap.Int("next_day_runs", len(parts.NextDay)),
			zap.Int("same_day_runs", len(parts.SameDay)),
			zap.Int("montreal_runs", len(parts.Montreal)),
		)

		name := fmt.Sprintf("dispatch_report_%s.xlsx", time.Now().Format("20060102_150405"))
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		w.Header().Set("X-Report-ID", reportID)
		if err := report.Write(parts, w); err != nil {
			// Headers are gone; all we can do is log.
			log.Error("serve: write workbook response", zap.Error(err))
		}
	})

	return mux
}

// writeIngestError maps ingestion failures to responses: schema violations
// are the uploader's problem, everything else is a malformed file.
func writeIngestError(w http.ResponseWriter, err error) {
	var schemaErr *model.SchemaViolationError
	if eris.As(err, &schemaErr) {
		http.Error(w, fmt.Sprintf(`{"error":"required column %q missing from file"}`, schemaErr.Field), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, `{"error":"could not parse scan file"}`, http.StatusBadRequest)
}
