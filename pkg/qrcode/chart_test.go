package qrcode

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// doerFunc adapts a function to HTTPDoer for transport substitution.
type doerFunc func(req *http.Request) (*http.Response, error)

func (f doerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// staticResponse returns a transport that always answers with the given
// status and body.
func staticResponse(status int, body string) doerFunc {
	return func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}, nil
	}
}

// unreachable returns a transport that fails the test if it is ever used.
func unreachable(t *testing.T) doerFunc {
	return func(req *http.Request) (*http.Response, error) {
		t.Fatalf("unexpected request to %s", req.URL)
		return nil, nil
	}
}

func TestNewChartRenderer_Defaults(t *testing.T) {
	r, err := NewChartRenderer()
	require.NoError(t, err)

	assert.Equal(t, LevelL, r.ErrorCorrectionLevel())
	assert.Equal(t, 4, r.Margin())
	assert.Equal(t, DefaultEndpoint, r.Endpoint())
}

func TestNewChartRenderer_InvalidOptions(t *testing.T) {
	_, err := NewChartRenderer(WithErrorCorrectionLevel("incorrectErrorCorrectionLevel"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = NewChartRenderer(WithMargin(-1))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = NewChartRenderer(WithEndpoint(""))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

// TestChartRenderer_SetErrorCorrectionLevel verifies that exactly L, M, Q
// and H are accepted and a rejected value leaves the level unchanged.
func TestChartRenderer_SetErrorCorrectionLevel(t *testing.T) {
	r, err := NewChartRenderer()
	require.NoError(t, err)

	for _, level := range SupportedErrorCorrectionLevels() {
		require.NoError(t, r.SetErrorCorrectionLevel(level))
		assert.Equal(t, level, r.ErrorCorrectionLevel())
	}

	for _, bad := range []ErrorCorrectionLevel{"", "l", "X", "incorrectErrorCorrectionLevel"} {
		err := r.SetErrorCorrectionLevel(bad)
		require.Error(t, err, "level %q should be rejected", bad)

		var argErr *InvalidArgumentError
		require.True(t, errors.As(err, &argErr))
		assert.Equal(t, "errorCorrectionLevel", argErr.Argument)
		assert.Equal(t, LevelH, r.ErrorCorrectionLevel(), "rejected level must not replace the previous one")
	}
}

func TestChartRenderer_SetMargin(t *testing.T) {
	r, err := NewChartRenderer()
	require.NoError(t, err)

	require.NoError(t, r.SetMargin(0))
	assert.Equal(t, 0, r.Margin())

	require.NoError(t, r.SetMargin(5))
	assert.Equal(t, 5, r.Margin())

	err = r.SetMargin(-1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, "Border margin must be positive integer number or 0", err.Error())
	assert.Equal(t, 5, r.Margin())
}

// TestChartRenderer_DefaultHTTPClient verifies the lazy transport is created
// once and then reused.
func TestChartRenderer_DefaultHTTPClient(t *testing.T) {
	r, err := NewChartRenderer()
	require.NoError(t, err)

	first := r.HTTPClient()
	require.NotNil(t, first)
	assert.IsType(t, &http.Client{}, first)
	assert.Same(t, first, r.HTTPClient())
}

func TestChartRenderer_SetHTTPClient(t *testing.T) {
	r, err := NewChartRenderer()
	require.NoError(t, err)

	client := &http.Client{}
	r.SetHTTPClient(client)
	assert.Same(t, client, r.HTTPClient())
}

// TestChartRenderer_NilHTTPClient verifies that a nil *http.Client, which is
// a non-nil HTTPDoer, still falls back to the lazy default transport.
func TestChartRenderer_NilHTTPClient(t *testing.T) {
	var nilClient *http.Client

	t.Run("option", func(t *testing.T) {
		r, err := NewChartRenderer(WithHTTPClient(nilClient))
		require.NoError(t, err)
		assert.IsType(t, &http.Client{}, r.HTTPClient())
		assert.NotNil(t, r.HTTPClient().(*http.Client))
	})

	t.Run("setter", func(t *testing.T) {
		r, err := NewChartRenderer(WithHTTPClient(staticResponse(http.StatusOK, "test")))
		require.NoError(t, err)

		r.SetHTTPClient(nilClient)
		client, ok := r.HTTPClient().(*http.Client)
		require.True(t, ok)
		assert.NotNil(t, client)
	})
}

// TestChartRenderer_ConcurrentRenderDefaultClient renders from several
// goroutines on a renderer whose transport has not been created yet.
// Run with -race to check the lazy initialization.
func TestChartRenderer_ConcurrentRenderDefaultClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("test"))
	}))
	defer srv.Close()

	r, err := NewChartRenderer(WithEndpoint(srv.URL))
	require.NoError(t, err)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	bodies := make([]string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			img, err := r.Render(context.Background(), "HELLO", 10, 10)
			errs[i] = err
			if err == nil {
				bodies[i] = img.String()
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "test", bodies[i])
	}
	assert.Same(t, r.HTTPClient(), r.HTTPClient())
}

// TestChartRenderer_RenderReturnsBody verifies the end-to-end path with a
// substituted transport answering 200 "test".
func TestChartRenderer_RenderReturnsBody(t *testing.T) {
	r, err := NewChartRenderer(WithHTTPClient(staticResponse(http.StatusOK, "test")))
	require.NoError(t, err)

	img, err := r.Render(context.Background(), "TestMessage", 500, 500)
	require.NoError(t, err)
	require.NotNil(t, img)
	assert.Equal(t, []byte("test"), img.Bytes())
	assert.Equal(t, "test", img.String())
}

// TestChartRenderer_RenderAtCapacity verifies that every longest-valid text
// reaches the transport, and one byte more never does.
func TestChartRenderer_RenderAtCapacity(t *testing.T) {
	for _, tt := range capacityCases() {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewChartRenderer(
				WithErrorCorrectionLevel(tt.level),
				WithHTTPClient(staticResponse(http.StatusOK, "test")),
			)
			require.NoError(t, err)

			img, err := r.Render(context.Background(), tt.text, 500, 500)
			require.NoError(t, err)
			assert.Equal(t, "test", img.String())

			r.SetHTTPClient(unreachable(t))
			_, err = r.Render(context.Background(), tt.text+"1", 500, 500)
			assert.True(t, errors.Is(err, ErrValidation))
		})
	}
}

// TestChartRenderer_RenderPostsForm verifies the wire contract against a
// real HTTP server.
func TestChartRenderer_RenderPostsForm(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotForm        url.Values
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		gotMethod = req.Method
		gotContentType = req.Header.Get("Content-Type")
		if err := req.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotForm = req.PostForm
		_, _ = w.Write([]byte("\x89PNG"))
	}))
	defer srv.Close()

	r, err := NewChartRenderer(
		WithEndpoint(srv.URL),
		WithHTTPClient(srv.Client()),
		WithErrorCorrectionLevel(LevelQ),
		WithMargin(0),
	)
	require.NoError(t, err)

	img, err := r.Render(context.Background(), "Привет, мир", 200, 150)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "qr", gotForm.Get("cht"))
	assert.Equal(t, "Привет, мир", gotForm.Get("chl"))
	assert.Equal(t, "200x150", gotForm.Get("chs"))
	assert.Equal(t, "UTF-8", gotForm.Get("choe"))
	assert.Equal(t, "Q|0", gotForm.Get("chld"))
	assert.Equal(t, "\x89PNG", img.String())
}

// TestChartRenderer_RenderTransportError verifies that a failing transport
// surfaces as a RenderError that still exposes the cause.
func TestChartRenderer_RenderTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	r, err := NewChartRenderer(WithHTTPClient(doerFunc(func(*http.Request) (*http.Response, error) {
		return nil, cause
	})))
	require.NoError(t, err)

	_, err = r.Render(context.Background(), "TestMessage", 500, 500)
	require.Error(t, err)

	var renderErr *RenderError
	require.True(t, errors.As(err, &renderErr))
	assert.Equal(t, 0, renderErr.StatusCode)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrRender))
}

// TestChartRenderer_RenderHTTPStatus verifies that non-2xx responses are
// failures and keep the status code.
func TestChartRenderer_RenderHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"not found", http.StatusNotFound},
		{"server error", http.StatusInternalServerError},
		{"redirect not followed", http.StatusNotModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewChartRenderer(WithHTTPClient(staticResponse(tt.status, "oops")))
			require.NoError(t, err)

			_, err = r.Render(context.Background(), "TestMessage", 500, 500)
			require.Error(t, err)

			var renderErr *RenderError
			require.True(t, errors.As(err, &renderErr))
			assert.Equal(t, tt.status, renderErr.StatusCode)
			assert.Contains(t, err.Error(), "Failed to get data from chart service")
		})
	}
}

// TestChartRenderer_RenderCancelledContext verifies that cancellation is
// reported as a RenderError wrapping context.Canceled.
func TestChartRenderer_RenderCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("test"))
	}))
	defer srv.Close()

	r, err := NewChartRenderer(WithEndpoint(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.Render(ctx, "TestMessage", 500, 500)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRender))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestChartRenderer_FormValues(t *testing.T) {
	r, err := NewChartRenderer(WithErrorCorrectionLevel(LevelH), WithMargin(2))
	require.NoError(t, err)

	form := r.FormValues("abc", 50, 60)
	assert.Equal(t, url.Values{
		"cht":  {"qr"},
		"chl":  {"abc"},
		"chs":  {"50x60"},
		"choe": {"UTF-8"},
		"chld": {"H|2"},
	}, form)
}
