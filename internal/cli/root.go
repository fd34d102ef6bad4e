// Package cli implements the coverage command line: run the engine for a day, show the stored
// sheet and export it without going through the HTTP API.
package cli

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/dto"
)

// CoverageAPI is the slice of the coverage service the commands drive.
type CoverageAPI interface {
	Run(ctx context.Context, req dto.RunCoverageRequest) (*dto.CoverageRunResponse, error)
	Get(ctx context.Context, date string) (*dto.CoverageSheet, bool, error)
	Export(ctx context.Context, date, format string) (*dto.ExportFile, error)
}

// Factory opens the service for one command. The returned release func is always called.
type Factory func(ctx context.Context) (CoverageAPI, func(), error)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

type root struct {
	factory Factory
	logger  *zap.Logger
}

// NewRootCommand builds the command tree.
func NewRootCommand(factory Factory, logger *zap.Logger) *cobra.Command {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &root{factory: factory, logger: logger}

	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Substitute coverage engine",
		Long: `coverage assigns covering staff to the periods left open by absent
teachers and paraprofessionals, using the same engine as the HTTP API.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			info := commandContext{correlationID: uuid.New(), startedAt: time.Now()}
			cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
			r.logger.Info("command start",
				zap.String("command", cmd.CommandPath()),
				zap.String("correlation_id", info.correlationID.String()),
			)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
			if !ok {
				return
			}
			r.logger.Info("command end",
				zap.String("command", cmd.CommandPath()),
				zap.String("correlation_id", info.correlationID.String()),
				zap.Int64("duration_ms", time.Since(info.startedAt).Milliseconds()),
			)
		},
	}

	cmd.AddCommand(r.runCommand(), r.showCommand(), r.exportCommand())
	return cmd
}

func (r *root) open(ctx context.Context) (CoverageAPI, func(), error) {
	svc, release, err := r.factory(ctx)
	if release == nil {
		release = func() {}
	}
	return svc, release, err
}
