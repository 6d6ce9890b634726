package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/surveyloom-cli/internal/parser"
	"github.com/KaramelBytes/surveyloom-cli/internal/project"
)

var (
	abFlags runFlags
	abQuiet bool
)

// expandInputs resolves globs and literal paths into a sorted, de-duplicated
// list of readable survey files.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			if !parser.Supported(m) {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple survey exports with progress and optional project history",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		c, err := requireConfig()
		if err != nil {
			return err
		}
		f := &abFlags
		var p *project.Project
		if f.project != "" {
			if p, err = loadProjectByName(f.project); err != nil {
				return err
			}
			f.applyProject(cmd, p.Settings)
		}
		if err := f.validate(); err != nil {
			return err
		}
		opts, err := f.options(cmd.Context(), c)
		if err != nil {
			return err
		}

		f.taken = map[string]int{}
		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, outputs, err := analyzeFile(cmd.Context(), path, f, c, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", filepath.Base(path), err)
			}
			if !abQuiet {
				printSkipped(rep)
				for _, o := range outputs {
					fmt.Printf("✓ Wrote %s\n", o)
				}
			}
			if p != nil {
				if err := recordRun(p, path, rep, outputs); err != nil {
					return err
				}
			}
		}
		if p != nil && !abQuiet {
			fmt.Printf("✓ Recorded %d runs in project '%s'\n", total, p.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	abFlags.register(analyzeBatchCmd)
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
