package cmd

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/matching"
	"github.com/signedhq/signed-matcher/internal/vector"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback <applicant-id> <job-id>",
	Short: "Nudge an applicant's preference vector toward or away from a job posting",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		feedback(cmd, args[0], args[1])
	},
}

func init() {
	rootCmd.AddCommand(feedbackCmd)

	feedbackCmd.Flags().Bool("reject", false, "nudge away from the posting instead of toward it")
}

func feedback(cmd *cobra.Command, rawApplicantID, rawJobID string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	applicantID, err := uuid.Parse(rawApplicantID)
	if err != nil {
		logger.Fatal("invalid applicant id", zap.String("applicant_id", rawApplicantID), zap.Error(err))
	}

	jobID, err := uuid.Parse(rawJobID)
	if err != nil {
		logger.Fatal("invalid job id", zap.String("job_id", rawJobID), zap.Error(err))
	}

	st, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("connecting to the store", zap.Error(err))
	}

	applicant, err := st.GetApplicant(ctx, applicantID)
	if err != nil {
		logger.Fatal("getting the applicant", zap.Error(err))
	}

	job, err := st.GetJob(ctx, jobID)
	if err != nil {
		logger.Fatal("getting the job posting", zap.Error(err))
	}

	// A vector from a different encoder model is as useless as no vector.
	if applicant.EncoderModel != "" && job.EncoderModel != "" &&
		applicant.EncoderModel != job.EncoderModel {
		job.Vector = nil
	}

	dir := vector.Toward
	if reject, _ := cmd.Flags().GetBool("reject"); reject {
		dir = vector.Away
	}

	updater := matching.NewUpdater(matchingConfig(config).LearningRate)

	updated, err := updater.ApplyFeedback(applicant.Vector, job.Vector, dir)
	if errors.Is(err, matching.ErrMissingEmbedding) {
		logger.Fatal("feedback requires both embeddings",
			zap.String("applicant_id", applicantID.String()),
			zap.String("job_id", jobID.String()),
			zap.String("hint", "run reindex to backfill missing or stale vectors"),
		)
	}
	if err != nil {
		logger.Fatal("applying feedback", zap.Error(err))
	}

	if err := st.UpdateApplicantVector(ctx, applicantID, updated, applicant.EncoderModel); err != nil {
		logger.Fatal("storing the updated preference vector", zap.Error(err))
	}

	logger.Info("preference vector updated",
		zap.String("applicant_id", applicantID.String()),
		zap.String("job_id", jobID.String()),
		zap.String("direction", dir.String()),
	)
}
