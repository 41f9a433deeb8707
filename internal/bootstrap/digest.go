package bootstrap

import (
	"context"

	"triage_server/config"
	"triage_server/core/service/digest"
	"triage_server/pkg/logger"
)

// NewDigest wires the one-shot digest pipeline. A Gmail session is
// mandatory here; without one there is nothing to fetch.
func NewDigest(ctx context.Context, cfg *config.Config) (*digest.Service, func(), error) {
	if cfg.IsDevelopment() {
		logger.SetLevel(logger.LevelDebug)
	}

	deps, cleanup, err := NewDependencies(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Digest pipeline ready (model: %s)", cfg.LLMModel)
	return deps.DigestService, cleanup, nil
}
