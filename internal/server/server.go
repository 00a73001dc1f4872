// Package server exposes QR code generation over HTTP with gin.
//
// Routes:
//
//	GET|POST /qr       render a QR code; parameters text, width, height,
//	                   level, margin (query string or form body)
//	GET      /healthz  liveness probe
//
// Library errors map to HTTP statuses: *InvalidArgumentError → 400,
// *ValidationError → 422, *RenderError → 502.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// requestIDKey is the context key the request id is stored under.
type requestIDKey struct{}

// RequestIDKey is exported so the logger can extract the id from contexts.
var RequestIDKey = requestIDKey{}

// RendererFactory returns a renderer for one request. The level and margin
// come from the request or the defaults; an invalid value must be reported
// as a *qrcode.InvalidArgumentError.
type RendererFactory func(level qrcode.ErrorCorrectionLevel, margin int) (qrcode.Renderer, error)

// Defaults are used for parameters missing from a request.
type Defaults struct {
	Width  int
	Height int
	Level  qrcode.ErrorCorrectionLevel
	Margin int
}

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	factory  RendererFactory
	defaults Defaults
	logger   *slog.Logger
}

// New creates a Server. A nil logger discards output.
func New(factory RendererFactory, defaults Defaults, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{factory: factory, defaults: defaults, logger: logger}
}

// Handler builds the gin engine with all routes registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestID())
	r.Use(s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/qr", s.handleQR)
	r.POST("/qr", s.handleQR)

	return r
}

// Run serves Handler on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("listening", slog.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	s.logger.Info("stopped")
	return nil
}

// requestID reuses the caller's X-Request-ID or generates one, echoes it in
// the response and stores it in the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(RequestIDHeader, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), RequestIDKey, id))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.InfoContext(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// qrParams is the parsed form of a /qr request.
type qrParams struct {
	text   string
	width  int
	height int
	level  qrcode.ErrorCorrectionLevel
	margin int
}

func (s *Server) parseParams(c *gin.Context) (qrParams, error) {
	p := qrParams{
		text:   c.Request.FormValue("text"),
		width:  s.defaults.Width,
		height: s.defaults.Height,
		level:  s.defaults.Level,
		margin: s.defaults.Margin,
	}
	if p.text == "" {
		return p, &qrcode.InvalidArgumentError{Argument: "text", Message: "text parameter is required"}
	}

	widthSet := false
	if v := c.Request.FormValue("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, &qrcode.InvalidArgumentError{Argument: "width", Message: "Width must be positive integer number"}
		}
		p.width = n
		widthSet = true
	}
	if v := c.Request.FormValue("height"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, &qrcode.InvalidArgumentError{Argument: "height", Message: "Height must be positive integer number"}
		}
		p.height = n
	} else if widthSet {
		// Like qrcode.New, an omitted height follows the width.
		p.height = p.width
	}
	if v := c.Request.FormValue("level"); v != "" {
		level, err := qrcode.ParseErrorCorrectionLevel(v)
		if err != nil {
			return p, err
		}
		p.level = level
	}
	if v := c.Request.FormValue("margin"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, &qrcode.InvalidArgumentError{Argument: "margin", Message: "Border margin must be positive integer number or 0"}
		}
		p.margin = n
	}
	return p, nil
}

func (s *Server) handleQR(c *gin.Context) {
	p, err := s.parseParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	code, err := qrcode.New(p.text, p.width, p.height)
	if err != nil {
		s.fail(c, err)
		return
	}

	renderer, err := s.factory(p.level, p.margin)
	if err != nil {
		s.fail(c, err)
		return
	}
	code.SetRenderer(renderer)

	img, err := code.Generate(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	raw := img.Bytes()
	c.Header("Cache-Control", "max-age=3600")
	c.Data(http.StatusOK, http.DetectContentType(raw), raw)
}

// fail writes a JSON error with the status matching err's category.
func (s *Server) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "qr request failed", slog.Any("error", err))
	}

	body := gin.H{"error": err.Error()}
	var vErr *qrcode.ValidationError
	if errors.As(err, &vErr) {
		body["detail"] = vErr.Detail()
	}
	c.AbortWithStatusJSON(status, body)
}

// StatusFor maps a pkg/qrcode error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, qrcode.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, qrcode.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, qrcode.ErrRender):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
