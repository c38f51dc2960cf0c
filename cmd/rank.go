package cmd

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/matching"
	"github.com/signedhq/signed-matcher/internal/store"
)

const defaultPageSize = 15

var rankCmd = &cobra.Command{
	Use:   "rank <applicant-id>",
	Short: "Rank active job postings for an applicant by preference similarity",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		rank(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().IntP("page", "p", 1, "page of results to show")
	rankCmd.Flags().Int("page-size", 0, "results per page (default from config, 15)")
}

func rank(cmd *cobra.Command, rawID string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	applicantID, err := uuid.Parse(rawID)
	if err != nil {
		logger.Fatal("invalid applicant id", zap.String("applicant_id", rawID), zap.Error(err))
	}

	st, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("connecting to the store", zap.Error(err))
	}

	applicant, err := st.GetApplicant(ctx, applicantID)
	if err != nil {
		logger.Fatal("getting the applicant", zap.Error(err))
	}

	if applicant.Vector == nil {
		logger.Warn("applicant has no preference vector, all scores will be zero",
			zap.String("applicant_id", applicantID.String()),
			zap.String("hint", "run reindex --applicants or apply feedback first"),
		)
	}

	jobs, err := st.ActiveJobs(ctx)
	if err != nil {
		logger.Fatal("listing active jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		logger.Info("exiting", zap.String("reason", "no active job postings"))
		return
	}

	byID := make(map[string]*store.JobPosting, len(jobs))
	candidates := make([]matching.Candidate, 0, len(jobs))
	for _, job := range jobs {
		byID[job.ID.String()] = job

		vec := job.Vector
		// Vectors from a different encoder model are incomparable; score
		// them like missing embeddings.
		if applicant.EncoderModel != "" && job.EncoderModel != "" &&
			applicant.EncoderModel != job.EncoderModel {
			vec = nil
		}

		candidates = append(candidates, matching.Candidate{ID: job.ID.String(), Vector: vec})
	}

	ranked, err := matching.Rank(applicant.Vector, candidates)
	if err != nil {
		logger.Fatal("ranking failed", zap.Error(err))
	}

	page, pageSize := pagination(cmd, config)
	start := (page - 1) * pageSize
	if start >= len(ranked) {
		logger.Info("exiting", zap.String("reason", "page is past the end of results"),
			zap.Int("page", page),
			zap.Int("results", len(ranked)),
		)
		return
	}
	end := start + pageSize
	if end > len(ranked) {
		end = len(ranked)
	}

	logger.Info("ranked job postings",
		zap.String("applicant_id", applicantID.String()),
		zap.Int("total", len(ranked)),
		zap.Int("page", page),
	)

	for i, r := range ranked[start:end] {
		job := byID[r.ID]
		fmt.Printf("%3d. %.4f  %s / %s / %s\n", start+i+1, r.Score, job.Title, job.Company, job.Location)
	}
}

func pagination(cmd *cobra.Command, config *Config) (page, pageSize int) {
	page, _ = cmd.Flags().GetInt("page")
	if page < 1 {
		page = 1
	}

	pageSize, _ = cmd.Flags().GetInt("page-size")
	if pageSize <= 0 {
		pageSize = matchingConfig(config).PageSize
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return page, pageSize
}
