// Command server exposes the legacy normalizer and the dataset combiner over HTTP.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_ner_combine/internal/adapters/logger"
	"github.com/baditaflorin/go_ner_combine/internal/adapters/storage"
	"github.com/baditaflorin/go_ner_combine/internal/core/combine"
	"github.com/baditaflorin/go_ner_combine/internal/core/conll"
	"github.com/baditaflorin/go_ner_combine/internal/core/domain"
	"github.com/baditaflorin/go_ner_combine/internal/pool"
	"github.com/baditaflorin/go_ner_combine/internal/ports"
)

// Default configuration
const (
	DefaultPort           = 8080
	DefaultReadTimeout    = 30 * time.Second
	DefaultWriteTimeout   = 30 * time.Second
	DefaultMaxRequestSize = 10 * 1024 * 1024 // 10MB
	DefaultConcurrency    = 0                // 0 means use GOMAXPROCS
	DefaultRequestTimeout = 30 * time.Second

	responseBufferSize = 64 * 1024
)

// CombineRequest carries both datasets as raw text.
type CombineRequest struct {
	Normalized string `json:"normalized"`
	Legacy     string `json:"legacy"`
}

// CombineResponse holds the combined dataset and what went into it.
type CombineResponse struct {
	Combined        string `json:"combined"`
	Lines           int    `json:"lines"`
	NormalizedLines int    `json:"normalized_lines"`
	LegacyLines     int    `json:"legacy_lines"`
	DroppedMarkers  int    `json:"dropped_markers"`
	BLAKE3          string `json:"blake3"`
	ProcessingTime  string `json:"processing_time,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
	Line  int    `json:"line,omitempty"`
}

type server struct {
	normalizer ports.Normalizer
	logger     ports.Logger
	buffers    *pool.BufferPool
	timeout    time.Duration
}

func newServer(normalizer ports.Normalizer, logger ports.Logger) *server {
	return &server{
		normalizer: normalizer,
		logger:     logger,
		buffers:    pool.NewBufferPool(responseBufferSize),
		timeout:    DefaultRequestTimeout,
	}
}

func main() {
	// Parse command-line flags
	port := flag.Int("port", DefaultPort, "HTTP server port")
	readTimeout := flag.Duration("read-timeout", DefaultReadTimeout, "HTTP read timeout")
	writeTimeout := flag.Duration("write-timeout", DefaultWriteTimeout, "HTTP write timeout")
	maxRequestSize := flag.Int("max-request-size", DefaultMaxRequestSize, "Maximum request size in bytes")
	concurrency := flag.Int("concurrency", DefaultConcurrency, "Maximum number of concurrent requests (0 = GOMAXPROCS)")
	delimiter := flag.String("delimiter", conll.DefaultConfig().Delimiter, "Separator between token and label")
	logFile := flag.String("log-file", "", "Log file path (empty = stdout)")
	flag.Parse()

	// Set up logger
	log, err := logger.NewFileLogger(*logFile, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	cfg := conll.DefaultConfig()
	cfg.Delimiter = *delimiter
	normalizer, err := conll.NewNormalizer(cfg, log)
	if err != nil {
		log.Error("Failed to initialize normalizer", "error", err)
		os.Exit(1)
	}
	srv := newServer(normalizer, log)

	log.Info("Starting combiner HTTP server",
		"port", *port,
		"read_timeout", *readTimeout,
		"write_timeout", *writeTimeout,
		"max_request_size", *maxRequestSize,
		"concurrency", *concurrency,
	)

	// Create HTTP server with fasthttp
	httpServer := &fasthttp.Server{
		Handler:               srv.requestHandler,
		ReadTimeout:           *readTimeout,
		WriteTimeout:          *writeTimeout,
		MaxRequestBodySize:    *maxRequestSize,
		Concurrency:           *concurrency,
		DisableKeepalive:      false,
		TCPKeepalive:          true,
		TCPKeepalivePeriod:    3 * time.Minute,
		MaxIdleWorkerDuration: 10 * time.Second,
		Logger:                nil, // we'll handle logging ourselves
	}

	// Set up graceful shutdown
	idleConnsClosed := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info("Shutting down server...")
		if err := httpServer.Shutdown(); err != nil {
			log.Error("Error during server shutdown", "error", err)
		}
		close(idleConnsClosed)
	}()

	// Start server
	log.Info("Server listening", "address", fmt.Sprintf(":%d", *port))
	if err := httpServer.ListenAndServe(fmt.Sprintf(":%d", *port)); err != nil {
		log.Error("Server error", "error", err)
	}

	<-idleConnsClosed
	log.Info("Server stopped")
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()
	requestID := uuid.NewString()

	ctx.Response.Header.Set("Server", "CombinerServer")
	ctx.Response.Header.Set("X-Request-Id", requestID)

	// Route based on path
	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/normalize":
		s.handleNormalize(ctx)
	case "/combine":
		s.handleCombine(ctx)
	default:
		writeJSONError(ctx, fasthttp.StatusNotFound, ErrorResponse{Error: "Not found"})
	}

	s.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

// handleHealthCheck responds to health check requests
func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	writeJSONResponse(ctx, fasthttp.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleNormalize reformats a legacy dataset sent as the raw request body
// and answers with the normalized text.
func (s *server) handleNormalize(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	lines, _, err := s.normalizer.Normalize(c, "request", storage.SplitLines(ctx.PostBody()))
	if err != nil {
		writeNormalizeError(ctx, err)
		return
	}

	buf := s.buffers.Get()
	defer s.buffers.Put(buf)
	*buf = pool.AppendLines(*buf, lines)

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBody(*buf)
}

// handleCombine combines the two datasets of a JSON request in memory.
func (s *server) handleCombine(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeJSONError(ctx, fasthttp.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	startTime := time.Now()

	var req CombineRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeJSONError(ctx, fasthttp.StatusBadRequest, ErrorResponse{Error: "Invalid request: " + err.Error()})
		return
	}

	c, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	normalized := storage.SplitLines([]byte(req.Normalized))
	legacy, stats, err := s.normalizer.Normalize(c, "legacy", storage.SplitLines([]byte(req.Legacy)))
	if err != nil {
		writeNormalizeError(ctx, err)
		return
	}

	var out bytes.Buffer
	info, err := storage.WriteTo(&out, combine.Concat(normalized, legacy))
	if err != nil {
		s.logger.Error("Error building combined dataset", "error", err)
		writeJSONError(ctx, fasthttp.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSONResponse(ctx, fasthttp.StatusOK, CombineResponse{
		Combined:        out.String(),
		Lines:           info.Lines,
		NormalizedLines: len(normalized),
		LegacyLines:     len(legacy),
		DroppedMarkers:  stats.DroppedMarkers,
		BLAKE3:          info.BLAKE3,
		ProcessingTime:  time.Since(startTime).String(),
	})
}

// writeNormalizeError maps a normalizer failure to a response.
func writeNormalizeError(ctx *fasthttp.RequestCtx, err error) {
	var fe *domain.FormatError
	switch {
	case errors.As(err, &fe):
		writeJSONError(ctx, fasthttp.StatusUnprocessableEntity, ErrorResponse{Error: fe.Error(), Line: fe.Line})
	case errors.Is(err, context.DeadlineExceeded):
		writeJSONError(ctx, fasthttp.StatusServiceUnavailable, ErrorResponse{Error: "Request timed out"})
	default:
		writeJSONError(ctx, fasthttp.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

// Helper functions

// writeJSONResponse writes a JSON response to the context
func writeJSONResponse(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		writeJSONError(ctx, fasthttp.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
		return
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func writeJSONError(ctx *fasthttp.RequestCtx, status int, errResponse ErrorResponse) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")

	response, err := json.Marshal(errResponse)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}
