package internal

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/codegenius-ai/codegenius/shared/events"
	"github.com/codegenius-ai/codegenius/shared/llm"
	"github.com/rs/zerolog/log"
)

const (
	endpointGenerate = "generate"
	endpointReview   = "review"

	msgPromptRequired = "Prompt is required"
	msgCodeRequired   = "Code for review is required"
	msgInvalidBody    = "Invalid JSON body"
)

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Language string `json:"language"`
}

type generateResponse struct {
	Code string `json:"code"`
}

type reviewRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type reviewResponse struct {
	Review string `json:"review"`
}

// exchange carries per-request bookkeeping for logs and activity events.
type exchange struct {
	endpoint string
	language string
	started  time.Time
}

// Handler returns the full HTTP handler, middleware included.
func (rl *Relay) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/generate", rl.handleGenerate)
	mux.HandleFunc("POST /api/review", rl.handleReview)
	mux.HandleFunc("GET /api/status", rl.handleStatus)
	mux.HandleFunc("GET /ws", rl.hub.ServeWS)

	return requestID(accessLog(cors(mux)))
}

func (rl *Relay) serveAPI(ctx context.Context) error {
	srv := &http.Server{
		Addr:              rl.cfg.Addr(),
		Handler:           rl.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("relay listening")
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (rl *Relay) handleGenerate(w http.ResponseWriter, r *http.Request) {
	x := exchange{endpoint: endpointGenerate, started: time.Now()}

	var req generateRequest
	if !rl.decode(w, r, x, &req) {
		return
	}
	x.language = languageOrDefault(req.Language)
	if req.Prompt == "" {
		rl.reject(w, r, x, msgPromptRequired)
		return
	}

	code, err := rl.provider.Generate(r.Context(), GeneratePrompt(req.Prompt, x.language))
	if err != nil {
		rl.fail(w, r, x, err)
		return
	}
	if rl.cfg.StripCodeFences {
		code = llm.StripFences(code)
	}
	rl.succeed(w, r, x, events.RelayGenerated, generateResponse{Code: code})
}

func (rl *Relay) handleReview(w http.ResponseWriter, r *http.Request) {
	x := exchange{endpoint: endpointReview, started: time.Now()}

	var req reviewRequest
	if !rl.decode(w, r, x, &req) {
		return
	}
	x.language = languageOrDefault(req.Language)
	if req.Code == "" {
		rl.reject(w, r, x, msgCodeRequired)
		return
	}

	review, err := rl.provider.Generate(r.Context(), ReviewPrompt(req.Code, x.language))
	if err != nil {
		rl.fail(w, r, x, err)
		return
	}
	rl.succeed(w, r, x, events.RelayReviewed, reviewResponse{Review: review})
}

func (rl *Relay) handleStatus(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":   "online",
		"provider": rl.provider.Name(),
		"model":    rl.provider.Model(),
		"clients":  rl.hub.ClientCount(),
		"version":  rl.cfg.Version,
	}, http.StatusOK)
}

// decode reads the JSON body into v. An empty body decodes as an empty
// object so the caller reports the missing field instead.
func (rl *Relay) decode(w http.ResponseWriter, r *http.Request, x exchange, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, rl.cfg.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		log.Debug().Err(err).Str("request_id", RequestIDFrom(r.Context())).Msg("bad request body")
		rl.reject(w, r, x, msgInvalidBody)
		return false
	}
	return true
}

func (rl *Relay) reject(w http.ResponseWriter, r *http.Request, x exchange, msg string) {
	log.Warn().
		Str("request_id", RequestIDFrom(r.Context())).
		Str("endpoint", x.endpoint).
		Msg(msg)
	jsonErr(w, msg, http.StatusBadRequest)
	rl.emit(r.Context(), events.RelayRejected, rl.activity(r, x, http.StatusBadRequest, msg, ""))
}

func (rl *Relay) fail(w http.ResponseWriter, r *http.Request, x exchange, err error) {
	kind := string(llm.KindOf(err))
	log.Error().
		Err(err).
		Str("request_id", RequestIDFrom(r.Context())).
		Str("endpoint", x.endpoint).
		Str("provider", rl.provider.Name()).
		Str("kind", kind).
		Msg("upstream call failed")
	jsonErr(w, err.Error(), http.StatusInternalServerError)
	rl.emit(r.Context(), events.RelayFailed, rl.activity(r, x, http.StatusInternalServerError, err.Error(), kind))
}

func (rl *Relay) succeed(w http.ResponseWriter, r *http.Request, x exchange, routingKey string, v any) {
	jsonOK(w, v, http.StatusOK)
	rl.emit(r.Context(), routingKey, rl.activity(r, x, http.StatusOK, "", ""))
}

func (rl *Relay) activity(r *http.Request, x exchange, status int, errMsg, kind string) events.ActivityPayload {
	return events.ActivityPayload{
		RequestID:  RequestIDFrom(r.Context()),
		Endpoint:   x.endpoint,
		Language:   x.language,
		Provider:   rl.provider.Name(),
		Model:      rl.provider.Model(),
		Status:     status,
		DurationMS: time.Since(x.started).Milliseconds(),
		Error:      errMsg,
		ErrorKind:  kind,
	}
}

func jsonOK(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
