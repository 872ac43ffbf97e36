package installer

import (
	"context"
	"time"

	"github.com/oshokin/webkit-proxy/internal/logger"
)

// Pipeline step names, as reported in logs and BuildStepError.Step.
const (
	StepDownload  = "download"
	StepExtract   = "extract"
	StepBootstrap = "bootstrap"
	StepConfigure = "configure"
	StepCompile   = "compile"
	StepPlace     = "place"
	StepClean     = "clean"
)

// step turns one artifact into the next.
type step struct {
	name string
	run  func(ctx context.Context, artifact string) (string, error)
}

// runPipeline executes steps in order and stops at the first error, which is
// returned untouched. A positive timeout bounds every step separately.
func runPipeline(ctx context.Context, timeout time.Duration, artifact string, steps []step) (string, error) {
	for _, s := range steps {
		next, err := runStep(ctx, timeout, artifact, s)
		if err != nil {
			return "", err
		}

		artifact = next
	}

	return artifact, nil
}

func runStep(ctx context.Context, timeout time.Duration, artifact string, s step) (string, error) {
	ctx = logger.WithKV(ctx, "step", s.name)

	stepCtx, cancel := stepContext(ctx, timeout)
	defer cancel()

	started := time.Now()

	logger.DebugKV(stepCtx, "Install step started", "artifact", artifact)

	next, err := s.run(stepCtx, artifact)
	if err != nil {
		logger.ErrorKV(ctx, "Install step failed", "error", err, "elapsed", time.Since(started))

		return "", err
	}

	logger.InfoKV(ctx, "Install step completed", "artifact", next, "elapsed", time.Since(started))

	return next, nil
}

func stepContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, timeout)
}
