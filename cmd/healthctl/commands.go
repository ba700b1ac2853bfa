package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Skufu/healthdesk/internal/chat"
	"github.com/Skufu/healthdesk/internal/db"
	"github.com/Skufu/healthdesk/internal/faq"
	"github.com/Skufu/healthdesk/internal/lexical"
	"github.com/Skufu/healthdesk/internal/risk"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthctl",
		Short:         "Query the health assistant offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAskCmd(), newRiskCmd(), newFAQCmd())
	return root
}

func newAskCmd() *cobra.Command {
	var (
		faqPath string
		explain bool
	)
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Answer a chatbot message from a FAQ file",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var searcher chat.Searcher
			entries, err := faq.Load(faqPath)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			if index, err := lexical.Build(entries); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			} else {
				searcher = index
			}

			reply := chat.NewMatcher(searcher, nil).Reply(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			if explain {
				fmt.Fprintf(cmd.OutOrStdout(), "\noutcome=%s entry=%d score=%.4f threshold=%.2f\n",
					reply.Outcome, reply.Entry, reply.Score, chat.AcceptanceThreshold)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&faqPath, "faq", envOr("FAQ_PATH", "data/faq.json"), "FAQ file (JSON or YAML)")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the match outcome and score")
	return cmd
}

func newRiskCmd() *cobra.Command {
	var (
		modelPath string
		req       risk.Request
	)
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Assess risk for one patient",
		RunE: func(cmd *cobra.Command, args []string) error {
			var classifier risk.Classifier
			if model, err := risk.LoadModel(modelPath); err == nil {
				classifier = model
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}

			res, err := risk.NewAssessor(classifier).Assess(req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d%%, BMI %.1f)\n", res.Level, res.RiskPercentage, res.BMI)
			fmt.Fprintln(out, res.Recommendation)
			for _, a := range res.Actions {
				fmt.Fprintf(out, "  - %s\n", a)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&modelPath, "model", envOr("MODEL_PATH", "data/model.yaml"), "logistic model file")
	f.Float64Var(&req.Age, "age", 0, "age in years")
	f.Float64Var(&req.HeightCm, "height", 0, "height in cm")
	f.Float64Var(&req.WeightKg, "weight", 0, "weight in kg")
	f.IntVar(&req.Smoking, "smoking", 0, "smoker (0/1)")
	f.IntVar(&req.GeneticRisk, "genetic-risk", 0, "genetic risk level")
	f.IntVar(&req.PhysicalActivity, "physical-activity", 0, "physical activity level")
	f.IntVar(&req.AlcoholIntake, "alcohol-intake", 0, "alcohol intake level")
	f.IntVar(&req.CancerHistory, "cancer-history", 0, "prior cancer (0/1)")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("weight")
	return cmd
}

func newFAQCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Inspect and publish the FAQ corpus",
	}

	var statsPath string
	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus and vocabulary size",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := faq.Load(statsPath)
			if err != nil {
				return err
			}
			index, err := lexical.Build(entries)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "entries=%d vocabulary=%d\n", index.Len(), index.VocabularySize())
			return nil
		},
	}
	stats.Flags().StringVar(&statsPath, "faq", envOr("FAQ_PATH", "data/faq.json"), "FAQ file (JSON or YAML)")

	var importPath, databaseURL string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Replace the faq_entries table with a FAQ file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if databaseURL == "" {
				return fmt.Errorf("--database-url or DATABASE_URL is required")
			}
			entries, err := faq.Load(importPath)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				return lexical.ErrEmptyCorpus
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			database, err := db.New(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.RunMigrations(databaseURL); err != nil {
				return err
			}
			if err := database.ReplaceFAQEntries(ctx, entries); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", len(entries))
			return nil
		},
	}
	importCmd.Flags().StringVar(&importPath, "faq", envOr("FAQ_PATH", "data/faq.json"), "FAQ file (JSON or YAML)")
	importCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres connection string")

	cmd.AddCommand(stats, importCmd)
	return cmd
}
