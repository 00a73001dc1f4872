package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shinji-kodama/qrchart/internal/config"
	"github.com/shinji-kodama/qrchart/internal/httpclient"
	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/internal/server"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// renderSettings are the values that select and configure a renderer.
type renderSettings struct {
	kind   model.RendererKind
	level  qrcode.ErrorCorrectionLevel
	margin int
}

// userAgent is sent to the chart service.
func userAgent() string {
	return "qrchart/" + Version
}

// newHTTPClient builds the client used by the chart renderer from the
// timeout and proxy in cfg.
func newHTTPClient(cfg *config.Config) (*http.Client, error) {
	client, err := httpclient.New(httpclient.Options{
		Timeout:   time.Duration(cfg.Timeout),
		ProxyURL:  cfg.ProxyURL,
		UserAgent: userAgent(),
	})
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfig, "failed to build HTTP client", err)
	}
	return client, nil
}

// newRenderer builds the renderer selected by s. client is only used by the
// chart renderer and may be nil for the local one.
func newRenderer(cfg *config.Config, client qrcode.HTTPDoer, s renderSettings, log *slog.Logger) (qrcode.Renderer, error) {
	opts := []qrcode.Option{
		qrcode.WithErrorCorrectionLevel(s.level),
		qrcode.WithMargin(s.margin),
		qrcode.WithLogger(log),
	}

	switch s.kind {
	case model.RendererLocal:
		return qrcode.NewLocalRenderer(opts...)
	case model.RendererChart:
		opts = append(opts,
			qrcode.WithHTTPClient(client),
			qrcode.WithEndpoint(cfg.Endpoint),
		)
		return qrcode.NewChartRenderer(opts...)
	default:
		return nil, model.NewCLIError(model.ExitInvalidArgument,
			fmt.Sprintf("invalid renderer: %q (valid: chart, local)", s.kind))
	}
}

// rendererFactory adapts newRenderer for the HTTP server, which picks the
// level and margin per request. All chart renderers share one client so
// connections are pooled across requests.
func rendererFactory(cfg *config.Config, kind model.RendererKind, log *slog.Logger) (server.RendererFactory, error) {
	var client qrcode.HTTPDoer
	if kind == model.RendererChart {
		c, err := newHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
		client = c
	}

	return func(level qrcode.ErrorCorrectionLevel, margin int) (qrcode.Renderer, error) {
		return newRenderer(cfg, client, renderSettings{kind: kind, level: level, margin: margin}, log)
	}, nil
}
