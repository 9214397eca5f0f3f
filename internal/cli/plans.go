package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/review"
	"github.com/ppiankov/plancours/internal/store"
)

var (
	filterTeacher string
	filterStatus  string
	filterSession string
	plansJSON     bool

	reviewDecision string
	reviewComment  string
	reviewerName   string
	reviewerEmail  string
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List, show and review submitted plans",
}

var plansListCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted plans, newest first",
	Long: `List submitted plans with their verdict counts.

Example:
  plancours plans list
  plancours plans list --teacher tremblay --status soumis
  plancours plans list --session "Automne 2024" --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := review.Filter{Teacher: filterTeacher, Session: filterSession}
		if filterStatus != "" {
			status, err := parseStatus(filterStatus)
			if err != nil {
				return err
			}
			filter.Status = status
		}

		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			svc := &review.Service{Plans: st}
			plans, err := svc.List(ctx, filter)
			if err != nil {
				return err
			}

			if plansJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(plans)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSUBMITTED\tTEACHER\tFORM\tSESSION\tSTATUS\tC/A/NC")
			for _, p := range plans {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d/%d/%d\n",
					p.ID, p.CreatedAt.Format("2006-01-02 15:04"), p.TeacherName, p.FormName, p.Session,
					p.Status.Label(), p.Summary.Conforme, p.Summary.Ameliorer, p.Summary.NonConforme)
			}
			return tw.Flush()
		})
	},
}

var plansShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one plan with every answer and verdict",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			plan, err := st.GetPlan(ctx, args[0])
			if err != nil {
				return fmt.Errorf("plan %s: %w", args[0], err)
			}
			data, err := yaml.Marshal(plan)
			if err != nil {
				return fmt.Errorf("error marshaling plan: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var plansReviewCmd = &cobra.Command{
	Use:   "review <id>",
	Short: "Approve a plan or send it back for corrections",
	Long: `Record a coordinator decision on a submitted plan.

Example:
  plancours plans review 3f1c... --decision approuve
  plancours plans review 3f1c... --decision corrections --comment "Préciser l'évaluation finale."`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		decision, err := review.ParseDecision(reviewDecision)
		if err != nil {
			return err
		}
		reviewer := model.Teacher{DisplayName: reviewerName, Email: reviewerEmail}

		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			svc := &review.Service{Plans: st}
			plan, err := svc.Decide(ctx, args[0], decision, reviewComment, reviewer)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Plan %s: %s (by %s)\n", plan.ID, plan.Status.Label(), plan.ReviewerName)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(plansCmd)
	plansCmd.AddCommand(plansListCmd)
	plansCmd.AddCommand(plansShowCmd)
	plansCmd.AddCommand(plansReviewCmd)

	plansListCmd.Flags().StringVar(&filterTeacher, "teacher", "", "filter by teacher e-mail or name")
	plansListCmd.Flags().StringVar(&filterStatus, "status", "", "filter by status (soumis, approuve, corrections)")
	plansListCmd.Flags().StringVar(&filterSession, "session", "", "filter by session")
	plansListCmd.Flags().BoolVar(&plansJSON, "json", false, "print plans as JSON")

	plansReviewCmd.Flags().StringVar(&reviewDecision, "decision", "", "approuve or corrections (required)")
	plansReviewCmd.Flags().StringVar(&reviewComment, "comment", "", "comment for the teacher")
	plansReviewCmd.Flags().StringVar(&reviewerName, "reviewer-name", "", "coordinator name")
	plansReviewCmd.Flags().StringVar(&reviewerEmail, "reviewer-email", "", "coordinator e-mail")
	_ = plansReviewCmd.MarkFlagRequired("decision")
}

func parseStatus(s string) (model.ReviewStatus, error) {
	if strings.EqualFold(strings.TrimSpace(s), string(model.ReviewSubmitted)) {
		return model.ReviewSubmitted, nil
	}
	return review.ParseDecision(s)
}
