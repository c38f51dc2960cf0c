package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/signedhq/signed-matcher/internal/fanout"
	"github.com/signedhq/signed-matcher/internal/store"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var prompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var notifyCmd = &cobra.Command{
	Use:   "notify <job-id>",
	Short: "Fan out match notifications for a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		notify(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before emitting notifications")
	notifyCmd.Flags().StringP("watch", "w", "", "cron schedule for periodic fan-out, e.g. '@every 10m' (implies --auto-approve)")
}

func notify(cmd *cobra.Command, rawID string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	jobID, err := uuid.Parse(rawID)
	if err != nil {
		logger.Fatal("invalid job id", zap.String("job_id", rawID), zap.Error(err))
	}

	st, err := openStore(ctx, config)
	if err != nil {
		logger.Fatal("connecting to the store", zap.Error(err))
	}

	mc := matchingConfig(config)
	f := fanout.New(fanout.Config{
		Threshold:  mc.Threshold,
		MaxResults: mc.MaxResults,
	}, fanout.Deps{
		Applicants:    st,
		Notifications: st,
		Logger:        logger,
	})

	if schedule, _ := cmd.Flags().GetString("watch"); schedule != "" {
		watch(ctx, schedule, jobID, st, f, logger)
		return
	}

	job, err := st.GetJob(ctx, jobID)
	if err != nil {
		logger.Fatal("getting the job posting", zap.Error(err))
	}

	candidates, err := f.FindCandidates(ctx, job)
	if err != nil {
		logger.Fatal("scanning for candidates", zap.Error(err))
	}

	if len(candidates) == 0 {
		logger.Info("exiting", zap.String("reason", "no applicants above the similarity threshold"))
		return
	}

	logger.Info("found applicants to notify",
		zap.String("job_id", jobID.String()),
		zap.Int("count", len(candidates)),
		zap.Float64("best_score", candidates[0].Score),
	)

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); !autoApprove {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if action == PromptNo {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	created := f.Notify(ctx, job)
	logger.Info("notifications created", zap.Int("count", created))
}

// watch reloads the posting and reruns fan-out on the given schedule. Unread
// de-duplication keeps reruns from re-notifying the same applicants.
func watch(ctx context.Context, schedule string, jobID uuid.UUID, st *store.Store, f *fanout.Fanout, logger *zap.Logger) {
	c := cron.New()

	_, err := c.AddFunc(schedule, func() {
		job, err := st.GetJob(ctx, jobID)
		if err != nil {
			logger.Error("getting the job posting", zap.Error(err))
			return
		}

		created := f.Notify(ctx, job)
		logger.Info("periodic fan-out finished",
			zap.String("job_id", jobID.String()),
			zap.Int("created", created),
		)
	})
	if err != nil {
		logger.Fatal("invalid watch schedule", zap.String("schedule", schedule), zap.Error(err))
	}

	logger.Info("starting periodic fan-out",
		zap.String("job_id", jobID.String()),
		zap.String("schedule", schedule),
	)

	c.Run()
}
