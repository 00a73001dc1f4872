package qrcode

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-cleanhttp"
)

// DefaultEndpoint is the chart service that renders QR codes.
const DefaultEndpoint = "https://chart.googleapis.com/chart"

// outputEncoding is sent as choe; the chart service then reads chl as UTF-8.
const outputEncoding = "UTF-8"

// ChartRenderer renders QR codes by posting the text to a remote chart
// service and returning the response body as an Image.
//
// Render may be called from several goroutines at once. The setters are not
// synchronized with Render: configure the renderer before sharing it.
type ChartRenderer struct {
	settings

	// clientMu guards client, which is created on first use when nil.
	clientMu sync.Mutex
	client   HTTPDoer

	endpoint string
	logger   *slog.Logger
}

// NewChartRenderer returns a renderer with level L and margin 4 unless
// overridden by opts. An invalid option value returns an
// *InvalidArgumentError.
func NewChartRenderer(opts ...Option) (*ChartRenderer, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &ChartRenderer{
		settings: o.settings,
		client:   o.client,
		endpoint: o.endpoint,
		logger:   o.logger,
	}, nil
}

// newDefaultChartRenderer builds a renderer with default settings only,
// which cannot fail.
func newDefaultChartRenderer() *ChartRenderer {
	return &ChartRenderer{
		settings: defaultSettings(),
		endpoint: DefaultEndpoint,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// HTTPClient returns the transport, creating a pooled client from
// go-cleanhttp the first time it is needed. The same client is returned
// until SetHTTPClient replaces it.
func (r *ChartRenderer) HTTPClient() HTTPDoer {
	r.clientMu.Lock()
	defer r.clientMu.Unlock()
	if r.client == nil {
		r.client = cleanhttp.DefaultPooledClient()
	}
	return r.client
}

// SetHTTPClient replaces the transport, e.g. to add a proxy or a timeout.
// A nil client, including a nil *http.Client, restores the lazy default.
func (r *ChartRenderer) SetHTTPClient(client HTTPDoer) {
	r.clientMu.Lock()
	defer r.clientMu.Unlock()
	r.client = nilIfTypedNil(client)
}

// Endpoint returns the chart service URL.
func (r *ChartRenderer) Endpoint() string {
	return r.endpoint
}

// FormValues returns the parameters posted for the given request.
func (r *ChartRenderer) FormValues(text string, width, height int) url.Values {
	return url.Values{
		"cht":  {"qr"},
		"chl":  {text},
		"chs":  {fmt.Sprintf("%dx%d", width, height)},
		"choe": {outputEncoding},
		"chld": {fmt.Sprintf("%s|%d", r.level, r.margin)},
	}
}

// Render validates text against the capacity table and then posts it to the
// chart service. The response body is returned as is; it is not checked to
// be an image.
func (r *ChartRenderer) Render(ctx context.Context, text string, width, height int) (*Image, error) {
	// Capacity is checked first so an oversized text never reaches the network.
	if err := ValidateText(text, r.level); err != nil {
		return nil, err
	}

	form := r.FormValues(text, width, height)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &RenderError{Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	r.logger.DebugContext(ctx, "requesting chart",
		slog.String("endpoint", r.endpoint),
		slog.String("size", form.Get("chs")),
		slog.String("chld", form.Get("chld")),
		slog.Int("text_bytes", len(text)),
	)

	resp, err := r.HTTPClient().Do(req)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little of the body so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &RenderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response status %s", statusText(resp)),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RenderError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}

	r.logger.DebugContext(ctx, "chart received",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return &Image{raw: body}, nil
}

// statusText returns resp.Status, falling back to the numeric code for
// responses built without a status line (e.g. in tests).
func statusText(resp *http.Response) string {
	if resp.Status != "" {
		return resp.Status
	}
	return strconv.Itoa(resp.StatusCode)
}
