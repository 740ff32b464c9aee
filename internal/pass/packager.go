package pass

// packager.go runs the pass pipeline for one request:
// validate -> payload -> manifest -> sign -> archive.
//
// Stages run strictly in sequence and the first failure aborts the rest. All payload bytes
// are kept in memory; only the openssl signer touches disk, in its own staging directory.

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/digital-business-cards/walletpass/internal/crypto"
	"github.com/digital-business-cards/walletpass/internal/logger"
	"github.com/digital-business-cards/walletpass/internal/metrics"
)

// Result is a generated pass.
type Result struct {
	Archive      []byte
	SerialNumber string
	Descriptor   Descriptor
	Manifest     *Manifest
	Signature    []byte
}

// Packager builds signed .pkpass archives. It is safe for concurrent use.
type Packager struct {
	config Config
	signer crypto.Signer
	now    func() time.Time
}

type Option func(*Packager)

// WithClock overrides the generation time source.
func WithClock(now func() time.Time) Option {
	return func(p *Packager) { p.now = now }
}

// NewPackager creates a packager with injected configuration and signer.
func NewPackager(cfg Config, signer crypto.Signer, opts ...Option) *Packager {
	p := &Packager{config: cfg, signer: signer, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the packager's configuration.
func (p *Packager) Config() Config { return p.config }

// Generate validates the input and configuration, then builds and signs the pass.
//
// Validation errors are returned before any configuration check; configuration errors are
// returned before the signer is invoked.
func (p *Packager) Generate(ctx context.Context, in Input) (*Result, error) {
	reqLogger := logger.ContextRequestLogger(ctx)

	result, err := p.generate(ctx, in.Normalize(), reqLogger)
	if err != nil {
		metrics.PassesGenerated.WithLabelValues(metrics.ResultFailure, string(errorCode(err))).Inc()
		return nil, err
	}

	metrics.PassesGenerated.WithLabelValues(metrics.ResultSuccess, "").Inc()
	metrics.ArchiveBytes.Observe(float64(len(result.Archive)))
	return result, nil
}

func (p *Packager) generate(ctx context.Context, in Input, reqLogger *slog.Logger) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	generatedAt := p.now()

	var (
		payload    *Payload
		descriptor Descriptor
	)
	err := stage(reqLogger, metrics.StagePayload, func() error {
		var err error
		payload, descriptor, err = BuildPayload(p.config, in, generatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	var manifest *Manifest
	err = stage(reqLogger, metrics.StageManifest, func() error {
		var err error
		manifest, err = BuildManifest(payload)
		return err
	})
	if err != nil {
		return nil, err
	}

	var signature []byte
	err = stage(reqLogger, metrics.StageSign, func() error {
		var err error
		signature, err = p.signer.Sign(ctx, manifest.Bytes, p.config.Chain())
		if err != nil {
			return WrapSigningError(err, "failed to sign manifest")
		}
		if len(signature) == 0 {
			return WrapSigningError(errors.New("empty signature"), "failed to sign manifest")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var archive []byte
	err = stage(reqLogger, metrics.StageArchive, func() error {
		files := append(payload.Files(),
			File{Name: ManifestFile, Data: manifest.Bytes},
			File{Name: SignatureFile, Data: signature},
		)
		var err error
		archive, err = BuildArchive(files, generatedAt)
		return err
	})
	if err != nil {
		return nil, err
	}

	reqLogger.Info("pass generated",
		slog.String("serial_number", descriptor.SerialNumber),
		slog.Int("archive_bytes", len(archive)),
	)

	return &Result{
		Archive:      archive,
		SerialNumber: descriptor.SerialNumber,
		Descriptor:   descriptor,
		Manifest:     manifest,
		Signature:    signature,
	}, nil
}

// stage times a pipeline step and logs its outcome
func stage(reqLogger *slog.Logger, name string, fn func() error) error {
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	metrics.StageDuration.WithLabelValues(name).Observe(elapsed.Seconds())

	if err != nil {
		reqLogger.Warn("pass stage failed",
			slog.String("stage", name),
			slog.Duration("duration", elapsed),
			slog.String("error", err.Error()),
		)
		return err
	}
	reqLogger.Debug("pass stage completed",
		slog.String("stage", name),
		slog.Duration("duration", elapsed),
	)
	return nil
}

func errorCode(err error) ErrorCode {
	var passErr *PassError
	if errors.As(err, &passErr) {
		return passErr.Code()
	}
	return "unknown"
}
