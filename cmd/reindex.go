package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/embedding"
	"github.com/signedhq/signed-matcher/internal/store"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Recompute embeddings for postings with missing or stale vectors",
	Run: func(cmd *cobra.Command, _ []string) {
		reindex(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reindexCmd)

	reindexCmd.Flags().Bool("applicants", false, "also seed preference vectors for applicants without one")
}

func reindex(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	st, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("connecting to the store", zap.Error(err))
	}

	mirror, err := openMirror(ctx, config)
	if err != nil {
		logger.Fatal("connecting to the mirror", zap.Error(err))
	}

	encoder, modelTag, err := newTextEncoder(ctx, config, logger)
	if err != nil {
		logger.Fatal("building the encoder", zap.Error(err))
	}

	reindexJobs(ctx, st, mirror, encoder, modelTag, logger)

	if withApplicants, _ := cmd.Flags().GetBool("applicants"); withApplicants {
		reindexApplicants(ctx, st, encoder, modelTag, logger)
	}
}

func reindexJobs(ctx context.Context, st *store.Store, mirror *store.Mirror, encoder *embedding.TextEncoder, modelTag string, logger *zap.Logger) {
	jobs, err := st.JobsMissingVector(ctx, modelTag)
	if err != nil {
		logger.Fatal("listing jobs to reindex", zap.Error(err))
	}

	logger.Info("reindexing job postings", zap.Int("count", len(jobs)))

	updated := 0
	for _, job := range jobs {
		v := encoder.EncodeText(ctx, job.TextFields())
		if v == nil {
			logger.Warn("skipping job, embedding unavailable",
				zap.String("job_id", job.ID.String()),
			)
			continue
		}

		if err := st.UpdateJobVector(ctx, job.ID, v, modelTag); err != nil {
			logger.Warn("storing job vector failed",
				zap.String("job_id", job.ID.String()),
				zap.Error(err),
			)
			continue
		}

		if mirror != nil {
			if err := mirror.StoreJob(ctx, job); err != nil {
				logger.Warn("refreshing job mirror failed",
					zap.String("job_id", job.ID.String()),
					zap.Error(err),
				)
			}
		}

		updated++
	}

	logger.Info("job reindex finished", zap.Int("total", len(jobs)), zap.Int("updated", updated))
}

func reindexApplicants(ctx context.Context, st *store.Store, encoder *embedding.TextEncoder, modelTag string, logger *zap.Logger) {
	applicants, err := st.ApplicantsMissingVector(ctx, modelTag)
	if err != nil {
		logger.Fatal("listing applicants to reindex", zap.Error(err))
	}

	logger.Info("seeding applicant preference vectors", zap.Int("count", len(applicants)))

	updated := 0
	for _, applicant := range applicants {
		v := encoder.EncodeText(ctx, applicant.TextFields())
		if v == nil {
			logger.Warn("skipping applicant, embedding unavailable",
				zap.String("applicant_id", applicant.ID.String()),
			)
			continue
		}

		if err := st.UpdateApplicantVector(ctx, applicant.ID, v, modelTag); err != nil {
			logger.Warn("storing preference vector failed",
				zap.String("applicant_id", applicant.ID.String()),
				zap.Error(err),
			)
			continue
		}

		updated++
	}

	logger.Info("applicant reindex finished", zap.Int("total", len(applicants)), zap.Int("updated", updated))
}
