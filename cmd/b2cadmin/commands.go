package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/colleges"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/essay"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/export"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record/pgstore"
	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/session"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update identity, audit and user_data tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := database.Connect(config.Load()); err != nil {
				return err
			}
			defer database.Close()

			if err := database.MigrateShared(database.DB); err != nil {
				return fmt.Errorf("shared migration failed: %w", err)
			}
			if err := database.MigrateRecords(database.DB); err != nil {
				return fmt.Errorf("record migration failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func newCollegesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "colleges",
		Short: "Look up the built-in college reference table",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "search [query]",
			Short: "Search by name, location or state",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				q := ""
				if len(args) == 1 {
					q = args[0]
				}
				return printColleges(cmd.OutOrStdout(), colleges.Default().Search(q))
			},
		},
		&cobra.Command{
			Use:   "state <ST>",
			Short: "List colleges in a state",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return printColleges(cmd.OutOrStdout(), colleges.Default().ByState(args[0]))
			},
		},
	)
	return cmd
}

func printColleges(w io.Writer, refs []colleges.Reference) error {
	for _, d := range colleges.ResolveAll(refs, time.Now()) {
		if _, err := fmt.Fprintf(w, "%-50s %-28s early=%-10s regular=%s\n",
			d.Name, d.Location, orDash(d.EarlyDate), orDash(d.RegularDate)); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newScoreCmd() *cobra.Command {
	var feedbackFile string
	var words int
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the health score for a saved AI review",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(feedbackFile)
			if err != nil {
				return fmt.Errorf("failed to read feedback: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(essay.Score(string(raw), "", words))
		},
	}
	cmd.Flags().StringVar(&feedbackFile, "feedback-file", "", "file holding the review text")
	cmd.Flags().IntVar(&words, "words", 0, "essay word count")
	_ = cmd.MarkFlagRequired("feedback-file")
	return cmd
}

func newExportCmd() *cobra.Command {
	var userID, format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export one user's record from the Postgres backend",
		RunE: func(cmd *cobra.Command, _ []string) error {
			id, err := uuid.Parse(userID)
			if err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}
			format = strings.ToLower(format)
			if format != "json" && format != "csv" && format != "xlsx" {
				return fmt.Errorf("unknown --format %q (json, csv or xlsx)", format)
			}

			if err := database.Connect(config.Load()); err != nil {
				return err
			}
			defer database.Close()

			var user models.User
			if err := database.DB.First(&user, "id = ?", id).Error; err != nil {
				return fmt.Errorf("user %s: %w", id, err)
			}

			svc := record.NewService(pgstore.New(database.DB), nil, nil)
			rec, err := svc.Load(context.Background(), session.Session{UserID: id, Email: user.Email})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return writeExport(w, format, export.Owner{ID: id, Email: user.Email, DisplayName: user.DisplayName}, rec)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().StringVar(&format, "format", "json", "json, csv or xlsx")
	cmd.Flags().StringVar(&out, "out", "-", "output file, - for stdout")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func writeExport(w io.Writer, format string, owner export.Owner, rec *record.UserRecord) error {
	switch format {
	case "csv":
		return export.CollegesCSV(w, rec.Colleges)
	case "xlsx":
		return export.Workbook(w, owner, rec)
	default:
		return export.JSON(w, owner, rec, time.Now())
	}
}
