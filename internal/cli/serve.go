// Package cli: serve.go implements the "qrchart serve" command, which
// exposes QR code generation over HTTP until interrupted.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take to finish
// after SIGINT or SIGTERM.
const shutdownTimeout = 10 * time.Second

// serveFlags holds the flag values for the serve command.
type serveFlags struct {
	listen   string
	renderer string
}

// NewServeCommand creates the "serve" cobra command.
func NewServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve QR code images over HTTP",
		Long: `Serve QR code images over HTTP.

Routes:
  GET|POST /qr?text=&width=&height=&level=&margin=
           returns the image; 400 for invalid parameters, 422 when the
           text does not fit, 502 when the chart service fails
  GET /healthz

Examples:
  qrchart serve
  qrchart serve --listen 127.0.0.1:9000 --renderer local`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			listen := appConfig.Listen
			if cmd.Flags().Changed("listen") {
				listen = flags.listen
			}
			kind := appConfig.RendererKind()
			if cmd.Flags().Changed("renderer") {
				k, err := model.ParseRendererKind(flags.renderer)
				if err != nil {
					return model.WrapCLIError(model.ExitInvalidArgument, "invalid --renderer flag", err)
				}
				kind = k
			}
			return runServe(cmd.Context(), listen, kind)
		},
	}

	cmd.Flags().StringVar(&flags.listen, "listen", "", "Listen address (default from config: :8080)")
	cmd.Flags().StringVar(&flags.renderer, "renderer", "", "Renderer: chart or local (default from config: chart)")

	return cmd
}

func runServe(ctx context.Context, listen string, kind model.RendererKind) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// Stop on Ctrl+C or SIGTERM from a process manager.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory, err := rendererFactory(appConfig, kind, appLogger)
	if err != nil {
		return err
	}

	srv := server.New(factory, server.Defaults{
		Width:  appConfig.Width,
		Height: appConfig.EffectiveHeight(),
		Level:  appConfig.ErrorCorrectionLevel(),
		Margin: appConfig.Margin,
	}, appLogger)

	// gin's debug mode prints every route on startup.
	if !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	VerboseLog("Serving with %s renderer", kind)
	if err := srv.Run(ctx, listen, shutdownTimeout); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "server stopped with an error", err)
	}
	return nil
}
