package qrcode

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"reflect"
)

// Renderer turns a text into a QR code image of the requested size.
//
// Implementations return a *ValidationError when the text does not fit at
// their error-correction level and a *RenderError for any other failure to
// produce image bytes.
type Renderer interface {
	Render(ctx context.Context, text string, width, height int) (*Image, error)
}

// RendererFunc adapts an ordinary function to the Renderer interface.
type RendererFunc func(ctx context.Context, text string, width, height int) (*Image, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, text string, width, height int) (*Image, error) {
	return f(ctx, text, width, height)
}

// HTTPDoer is the transport used by ChartRenderer. *http.Client satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DefaultMargin is the quiet-zone width, in modules, used when none is set.
const DefaultMargin = 4

// settings holds the configuration shared by every renderer variant.
// Its exported methods are promoted onto ChartRenderer and LocalRenderer.
type settings struct {
	level  ErrorCorrectionLevel
	margin int
}

func defaultSettings() settings {
	return settings{level: DefaultErrorCorrectionLevel, margin: DefaultMargin}
}

// ErrorCorrectionLevel returns the active error-correction level.
func (s *settings) ErrorCorrectionLevel() ErrorCorrectionLevel {
	return s.level
}

// SetErrorCorrectionLevel replaces the error-correction level. Values other
// than L, M, Q and H are rejected with an *InvalidArgumentError and the
// previous level is kept.
func (s *settings) SetErrorCorrectionLevel(level ErrorCorrectionLevel) error {
	if !level.IsValid() {
		return unsupportedLevel(string(level))
	}
	s.level = level
	return nil
}

// Margin returns the quiet-zone width in modules.
func (s *settings) Margin() int {
	return s.margin
}

// SetMargin replaces the quiet-zone width. Negative values are rejected with
// an *InvalidArgumentError and the previous margin is kept.
func (s *settings) SetMargin(margin int) error {
	if margin < 0 {
		return invalidArgument("margin", "Border margin must be positive integer number or 0")
	}
	s.margin = margin
	return nil
}

// options collects the values passed to NewChartRenderer and NewLocalRenderer.
type options struct {
	settings
	client   HTTPDoer
	endpoint string
	logger   *slog.Logger
}

// Option configures a renderer at construction time.
// Options that only make sense for the remote renderer (WithHTTPClient,
// WithEndpoint) are ignored by LocalRenderer.
type Option func(*options) error

// WithErrorCorrectionLevel sets the error-correction level.
func WithErrorCorrectionLevel(level ErrorCorrectionLevel) Option {
	return func(o *options) error {
		return o.SetErrorCorrectionLevel(level)
	}
}

// WithMargin sets the quiet-zone width in modules.
func WithMargin(margin int) Option {
	return func(o *options) error {
		return o.SetMargin(margin)
	}
}

// WithHTTPClient sets the transport. A nil client, including a nil
// *http.Client, keeps the lazy default.
func WithHTTPClient(client HTTPDoer) Option {
	return func(o *options) error {
		o.client = nilIfTypedNil(client)
		return nil
	}
}

// nilIfTypedNil turns an interface holding a nil pointer (such as a nil
// *http.Client) into a true nil, so the lazy default applies to it too.
func nilIfTypedNil(client HTTPDoer) HTTPDoer {
	if client == nil {
		return nil
	}
	v := reflect.ValueOf(client)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return client
}

// WithEndpoint overrides the chart service URL.
func WithEndpoint(endpoint string) Option {
	return func(o *options) error {
		if endpoint == "" {
			return invalidArgument("endpoint", "Endpoint must not be empty")
		}
		o.endpoint = endpoint
		return nil
	}
}

// WithLogger sets the logger used for debug output. Nil loggers are ignored.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger != nil {
			o.logger = logger
		}
		return nil
	}
}

func applyOptions(opts []Option) (*options, error) {
	o := &options{
		settings: defaultSettings(),
		endpoint: DefaultEndpoint,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}
