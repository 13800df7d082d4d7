package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/openclinic-tools/dhisync/internal/db"
	"github.com/openclinic-tools/dhisync/internal/model"
	"github.com/openclinic-tools/dhisync/internal/output"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Curate the moderation queue of learned query examples",
}

var feedbackSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a verified question/query pair for moderation",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		question, _ := cmd.Flags().GetString("question")
		queryText, _ := cmd.Flags().GetString("query")
		reportName, _ := cmd.Flags().GetString("report")

		res, err := db.SubmitFeedback(conn, question, queryText, reportName)
		if err != nil {
			return cmdErr(fmt.Errorf("submitting feedback: %w", err), output.ErrGeneral)
		}

		if res.Existed {
			w.Success(res, fmt.Sprintf("Already exists as #%d (status: %s)", res.ID, res.Status))
			return nil
		}
		w.Success(res, fmt.Sprintf("Submitted #%d for moderation", res.ID))
		return nil
	},
}

var feedbackApproveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a pending example for prompt augmentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("invalid id %q", args[0]), output.ErrValidation)
		}

		if err := db.ApproveFeedback(conn, id); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		rec, err := db.GetFeedback(conn, id)
		if errors.Is(err, db.ErrNotFound) {
			w.Warn("No record with id %d; approve is a no-op", id)
			w.Success(nil, fmt.Sprintf("Nothing to approve for #%d", id))
			return nil
		}
		if err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		w.Success(rec, fmt.Sprintf("Approved #%d", id))
		return nil
	},
}

var feedbackDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a feedback record permanently",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		id, err := strconv.Atoi(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("invalid id %q", args[0]), output.ErrValidation)
		}

		if err := db.DeleteFeedback(conn, id); err != nil {
			return cmdErr(err, output.ErrGeneral)
		}

		w.Success(nil, fmt.Sprintf("Deleted #%d", id))
		return nil
	},
}

type feedbackListResult struct {
	Records []*model.FeedbackRecord `json:"records"`
	Total   int                     `json:"total"`
}

var feedbackListCmd = &cobra.Command{
	Use:   "list",
	Short: "List feedback records, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		conn := getDB(cmd)

		statusFlag, _ := cmd.Flags().GetString("status")
		status := model.FeedbackStatus(statusFlag)
		if statusFlag != "" {
			if err := model.ValidateFeedbackStatus(status); err != nil {
				return cmdErr(err, output.ErrValidation)
			}
		}

		records, err := db.ListFeedback(conn, status)
		if err != nil {
			return cmdErr(fmt.Errorf("listing feedback: %w", err), output.ErrGeneral)
		}

		if len(records) == 0 {
			w.Success(feedbackListResult{Records: records}, "No feedback records.")
			return nil
		}

		msg := ""
		for _, rec := range records {
			msg += fmt.Sprintf("#%-4d [%s] %q\n      %s\n", rec.ID, rec.Status, rec.Question, rec.QueryText)
		}
		w.Success(feedbackListResult{Records: records, Total: len(records)}, msg)
		return nil
	},
}

func init() {
	feedbackSubmitCmd.Flags().String("question", "", "The operator question (required)")
	feedbackSubmitCmd.Flags().String("query", "", "The verified SQL answer (required)")
	feedbackSubmitCmd.Flags().String("report", "", "Report name the pair belongs to")
	feedbackSubmitCmd.MarkFlagRequired("question")
	feedbackSubmitCmd.MarkFlagRequired("query")

	feedbackListCmd.Flags().String("status", "", "Filter by status (pending, approved, rejected)")

	feedbackCmd.AddCommand(feedbackSubmitCmd, feedbackApproveCmd, feedbackDeleteCmd, feedbackListCmd)
	rootCmd.AddCommand(feedbackCmd)
}
