package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/digital-business-cards/walletpass/internal/config"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/server"
	"github.com/digital-business-cards/walletpass/internal/version"
	"github.com/spf13/cobra"
)

//	@title			walletpass-server
//	@description	walletpass-server issues signed Apple Wallet business card passes (.pkpass)
//	@description
//	@description	## Common Error Responses
//	@description	All endpoints may return:
//	@description	- `413` Request body exceeds size limit
//	@description	- `429` Rate limit exceeded
//	@description	- `500` Internal server error
//	@description
//	@description	## Request Limits
//	@description	The pass endpoints are protected by:
//	@description	- **Rate limiting**: Configurable requests per second (see env vars) - default 100 rps (set to 0 to disable)
//	@description	- **Request size limits**: Configurable (see env vars) - default 64KB
//	@description
//	@description	## Delivery
//	@description	Mobile user agents and GET requests receive the pass inline so Wallet can open it directly.
//	@description	Other clients receive it as an attachment named after the card holder.
//	@license.name	MIT

//	@servers.url			http://localhost:8080
//	@servers.description	Development server

//	@accept		json
//	@produce	application/vnd.apple.pkpass

//	@tag.name			Passes
//	@tag.description	Apple Wallet pass generation

//	@tag.name			Common
//	@tag.description	Server API endpoints (health, readiness, version, metrics)

func main() {
	cmd := &cobra.Command{
		Use:   "walletpass-server",
		Short: "Apple Wallet business card pass server",
		Long:  `walletpass-server generates, signs and serves Apple Wallet passes for digital business cards`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}

	v := version.Get()
	cmd.Version = fmt.Sprintf("%s (built %s, commit %s)", v.Version, v.BuildDate, v.GitCommit)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.NewServerConfig()
	if err != nil {
		log.Printf("failed to load configuration: %v", err.Error())
		os.Exit(1)
	}

	appLogger := logger.InitLogger(logger.ParseLogLevel(cfg.LogLevel), cfg.Environment)

	appLogger.Info("Configuration loaded",
		slog.String("ENVIRONMENT", cfg.Environment),
		slog.String("HOST", cfg.Host),
		slog.Int("PORT", cfg.Port),
		slog.String("LOG_LEVEL", cfg.LogLevel),
		slog.String("PASS_TYPE_IDENTIFIER", cfg.PassTypeIdentifier),
		slog.String("TEAM_IDENTIFIER", cfg.TeamIdentifier),
		slog.String("WWDR_CERT_PATH", cfg.WWDRCertPath),
		slog.String("SIGNER_CERT_PATH", cfg.SignerCertPath),
		slog.String("SIGNER_KEY_PATH", cfg.SignerKeyPath),
		slog.String("SIGNER_BACKEND", cfg.SignerBackend),
		slog.Duration("SIGNING_TIMEOUT", cfg.SigningTimeout),
		slog.String("STAGING_DIR", cfg.StagingDir),
	)

	appLogger.Info("Starting server", slog.String("version", version.Get().Version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := server.NewServer(cfg, cfg.NewSigner(), appLogger)

	// missing signing material is reported but does not stop the server
	server.LogConfigurationStatus()

	if err := server.Start(ctx); err != nil {
		appLogger.Error("Server error", slog.String("error", err.Error()))
		return err
	}

	appLogger.Info("server shutdown complete")
	return nil
}
