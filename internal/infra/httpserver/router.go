package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/bryanwahyu/textanalyzer/internal/domain/analysis"
	"github.com/bryanwahyu/textanalyzer/internal/middleware"
)

// maxBodyBytes leaves room for 5000 multi-byte characters plus JSON escaping.
const maxBodyBytes = 64 << 10

// Analyzer is the pipeline the router serves.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analysis.Result, error)
}

type Options struct {
	AllowedOrigins []string
	Checks         []middleware.Check
	Metrics        *middleware.Metrics
	Logger         *zap.Logger
}

type Router struct {
	svc    Analyzer
	logger *zap.Logger
}

func NewRouter(svc Analyzer, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = middleware.NewMetrics()
	}
	r := &Router{svc: svc, logger: logger}

	mux := chi.NewRouter()
	mux.Use(middleware.Logging(logger))
	mux.Use(metrics.Middleware)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	mux.Get("/health", middleware.Live)
	mux.Get("/healthz", middleware.Health(opts.Checks...))
	mux.Get("/readyz", middleware.Ready)
	mux.Get("/metrics", metrics.Handler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// errBadBody marks a request whose JSON body could not be read.
var errBadBody = errors.New("invalid request body")

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var verr *analysis.ValidationError
		switch {
		case errors.Is(err, errBadBody):
			writeError(w, http.StatusBadRequest, errBadBody.Error())
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, verr.Error())
		case errors.As(err, new(*analysis.FailedError)):
			writeError(w, http.StatusBadGateway, analysis.FailedMessage)
		default:
			r.logger.Error("unhandled error", zap.String("path", req.URL.Path), zap.Error(err))
			writeError(w, http.StatusInternalServerError, analysis.FailedMessage)
		}
	}
}

// POST /v1/analyze
// Body: {"text": "<free-form text>"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Text string `json:"text"`
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return errBadBody
	}
	res, err := r.svc.Analyze(req.Context(), body.Text)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(res)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
