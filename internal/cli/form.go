package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/plancours/internal/forms"
	"github.com/ppiankov/plancours/internal/model"
	"github.com/ppiankov/plancours/internal/store"
)

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Validate, publish and list questionnaires",
	Long: `Forms are YAML files with a name, a session and a list of questions:

  name: Plan de cours
  session: Automne 2024
  questions:
    - id: objectifs
      text: Décrivez les objectifs du cours.
      rule: objectifs évaluation

Question ids must be unique; missing ids are generated.`,
}

var formValidateCmd = &cobra.Command{
	Use:   "validate <form.yaml>",
	Short: "Check a form file without saving it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		form, err := readForm(args[0])
		if err != nil {
			return err
		}

		forms.Normalize(form, time.Now())
		if err := forms.Validate(form, cfg.Forms.MinQuestions); err != nil {
			printValidation(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%s): %d questions\n", form.Name, form.Session, len(form.Questions))
		return nil
	},
}

var formPublishCmd = &cobra.Command{
	Use:   "publish <form.yaml>",
	Short: "Save a form and make it the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		form, err := readForm(args[0])
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := store.Open(ctx, cfg.Store)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()

		publisher := &forms.Publisher{Store: st, MinQuestions: cfg.Forms.MinQuestions}
		if err := publisher.Publish(ctx, form); err != nil {
			printValidation(cmd.ErrOrStderr(), err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Published %s (%s) as %s\n", form.Name, form.Session, form.ID)
		return nil
	},
}

var formActivateCmd = &cobra.Command{
	Use:   "activate <id>",
	Short: "Make a saved form the active one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			publisher := &forms.Publisher{Store: st}
			if err := publisher.Activate(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Form %s is now active\n", args[0])
			return nil
		})
	},
}

var formListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved forms",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(cmd.Context(), func(ctx context.Context, st store.Store) error {
			list, err := st.ListForms(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTIVE\tID\tNAME\tSESSION\tQUESTIONS\tUPDATED")
			for _, f := range list {
				active := ""
				if f.IsActive {
					active = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					active, f.ID, f.Name, f.Session, len(f.Questions), f.UpdatedAt.Format("2006-01-02"))
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(formCmd)
	formCmd.AddCommand(formValidateCmd)
	formCmd.AddCommand(formPublishCmd)
	formCmd.AddCommand(formActivateCmd)
	formCmd.AddCommand(formListCmd)
}

func readForm(path string) (*model.Form, error) {
	var form model.Form
	if err := readYAML(path, &form); err != nil {
		return nil, err
	}
	return &form, nil
}

func readYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// withStore opens the configured document store for the duration of fn
func withStore(ctx context.Context, fn func(ctx context.Context, st store.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	return fn(ctx, st)
}

// printValidation lists every message of a validation error
func printValidation(w io.Writer, err error) {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for _, msg := range verr.Errors {
		fmt.Fprintf(w, "✗ %s\n", msg)
	}
}
