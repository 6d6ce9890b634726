package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/surveyloom-cli/internal/store"
	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

var (
	tgConfidence float64
	tgProportion float64
	tgMargin     float64
	tgPopulation int
	tgQuestions  []int
	tgHistory    int
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "Compute sample sizes and demographic target shares",
}

// sampling merges the config defaults with any explicit flags.
func sampling(cmd *cobra.Command) (targets.Sampling, error) {
	c, err := requireConfig()
	if err != nil {
		return targets.Sampling{}, err
	}
	s := targets.Sampling{Confidence: c.ConfidenceLevel, Proportion: c.Proportion, Margin: c.MarginOfError}
	fl := cmd.Flags()
	if fl.Changed("confidence") {
		s.Confidence = tgConfidence
	}
	if fl.Changed("proportion") {
		s.Proportion = tgProportion
	}
	if fl.Changed("margin") {
		s.Margin = tgMargin
	}
	return s, s.Validate()
}

func loadReferenceArg(path string) (*targets.Reference, error) {
	ref, err := targets.LoadReference(path)
	if err != nil {
		return nil, err
	}
	if len(tgQuestions) > 0 {
		if err := ref.WithQuestions(tgQuestions); err != nil {
			return nil, err
		}
	}
	if tgPopulation > 0 {
		ref.Population = tgPopulation
	}
	return ref, nil
}

func printPlan(plan *targets.Plan) {
	fmt.Printf("Population: %d\n", plan.Population)
	fmt.Printf("Sample size: %d (confidence %.2f, proportion %.2f, margin %.3f)\n",
		plan.SampleSize, plan.Sampling.Confidence, plan.Sampling.Proportion, plan.Sampling.Margin)
	for i, d := range plan.Dimensions {
		name := d.Name
		if name == "" {
			name = fmt.Sprintf("dimension %d", i+1)
		}
		if d.Question > 0 {
			fmt.Printf("\n%s (question %d)\n", name, d.Question)
		} else {
			fmt.Printf("\n%s\n", name)
		}
		for _, s := range d.Distribution.Shares {
			fmt.Printf("  %-24s %6.2f%%  %6.1f\n", s.Label, s.Share*100, s.Share*float64(plan.SampleSize))
		}
	}
}

var targetsCalcCmd = &cobra.Command{
	Use:   "calc <reference.yaml>",
	Short: "Compute the sample size and target shares and save them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := sampling(cmd)
		if err != nil {
			return err
		}
		ref, err := loadReferenceArg(args[0])
		if err != nil {
			return err
		}
		plan, err := targets.Build(ref, s)
		if err != nil {
			return err
		}
		printPlan(plan)

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		rs, err := st.SaveReference(cmd.Context(), ref)
		if err != nil {
			return err
		}
		calc, err := st.SaveCalculation(cmd.Context(), rs.ID, plan)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Saved calculation %s\n", calc.ID)
		return nil
	},
}

var targetsImportCmd = &cobra.Command{
	Use:   "import <reference.yaml>",
	Short: "Save reference counts for later weighted runs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := loadReferenceArg(args[0])
		if err != nil {
			return err
		}
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		rs, err := st.SaveReference(cmd.Context(), ref)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Imported reference %q with %d dimensions (%s)\n", rs.Name, len(ref.Dimensions), rs.ID)
		return nil
	},
}

var targetsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the latest stored reference and its calculations",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()
		rs, err := st.LatestReference(cmd.Context())
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println("(no stored reference)")
			return nil
		}
		if err != nil {
			return err
		}
		ref, err := rs.Reference()
		if err != nil {
			return err
		}
		fmt.Printf("Reference: %s (%s, saved %s)\n", rs.Name, rs.ID, rs.CreatedAt)
		for i, d := range ref.Dimensions {
			fmt.Printf("- dimension %d: %s, question %d, %d categories, total %.0f\n", i+1, d.Name, d.Question, len(d.Categories), d.Total())
		}
		calcs, err := st.ListCalculations(cmd.Context(), rs.ID, tgHistory)
		if err != nil {
			return err
		}
		if len(calcs) == 0 {
			fmt.Println("(no calculations)")
			return nil
		}
		latest, err := calcs[0].Plan()
		if err != nil {
			return err
		}
		fmt.Println()
		printPlan(latest)
		if len(calcs) > 1 {
			fmt.Println("\nHistory:")
			for _, c := range calcs {
				fmt.Printf("- %s  n=%d  N=%d  %s\n", c.ID, c.SampleSize, c.Population, c.CreatedAt)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
	targetsCmd.AddCommand(targetsCalcCmd, targetsImportCmd, targetsShowCmd)

	for _, c := range []*cobra.Command{targetsCalcCmd, targetsImportCmd} {
		c.Flags().IntSliceVar(&tgQuestions, "questions", nil, "question numbers aligned to the reference dimensions")
		c.Flags().IntVar(&tgPopulation, "population", 0, "population size (default: reference population or first dimension total)")
	}
	targetsCalcCmd.Flags().Float64Var(&tgConfidence, "confidence", 0.95, "confidence level (overrides config)")
	targetsCalcCmd.Flags().Float64Var(&tgProportion, "proportion", 0.5, "expected proportion (overrides config)")
	targetsCalcCmd.Flags().Float64Var(&tgMargin, "margin", 0.05, "margin of error (overrides config)")
	targetsShowCmd.Flags().IntVar(&tgHistory, "history", 10, "number of calculations to list (0 = all)")
}
