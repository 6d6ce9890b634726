package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/surveyloom-cli/internal/project"
)

var (
	pmProject  string
	pmClear    bool
	pmSettings project.Settings
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage per-project settings",
}

var projectSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set or clear the analysis settings remembered by a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		if pmClear {
			p.Settings = &project.Settings{}
		}
		if p.Settings == nil {
			p.Settings = &project.Settings{}
		}
		s, in := p.Settings, &pmSettings
		fl := cmd.Flags()
		changed := 0
		set := func(name string, apply func()) {
			if fl.Changed(name) {
				apply()
				changed++
			}
		}
		set("mood", func() { s.Mood = in.Mood })
		set("nps", func() { s.NPS = in.NPS })
		set("csi", func() { s.CSI = in.CSI })
		set("tr", func() { s.TR = in.TR })
		set("roti", func() { s.ROTI = in.ROTI })
		set("segment", func() { s.Segments = in.Segments })
		set("weight-by", func() { s.WeightBy = in.WeightBy })
		set("reference", func() { s.Reference = in.Reference })
		set("respondents", func() { s.Respondents = in.Respondents })
		set("sheet-name", func() { s.SheetName = in.SheetName })
		set("sheet-index", func() { s.SheetIndex = in.SheetIndex })
		set("delimiter", func() { s.Delimiter = in.Delimiter })
		if changed == 0 && !pmClear {
			return fmt.Errorf("nothing to set; pass at least one setting flag or --clear")
		}
		if len(s.CSI) > 2 {
			return fmt.Errorf("--csi takes 1 or 2 question numbers, got %d", len(s.CSI))
		}
		if err := p.Save(); err != nil {
			return err
		}
		if pmClear && changed == 0 {
			fmt.Printf("✓ Cleared settings for %s\n", pmProject)
		} else {
			fmt.Printf("✓ Updated %d settings for %s\n", changed, pmProject)
		}
		return nil
	},
}

var projectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a project's settings and run history",
	RunE: func(cmd *cobra.Command, args []string) error {
		if pmProject == "" {
			return fmt.Errorf("--project is required")
		}
		p, err := loadProjectByName(pmProject)
		if err != nil {
			return err
		}
		fmt.Print(p.Describe())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectSetCmd, projectShowCmd)

	for _, c := range []*cobra.Command{projectSetCmd, projectShowCmd} {
		c.Flags().StringVarP(&pmProject, "project", "p", "", "project name")
	}
	fl := projectSetCmd.Flags()
	fl.BoolVar(&pmClear, "clear", false, "clear all settings before applying the given ones")
	fl.IntVar(&pmSettings.Mood, "mood", 0, "mood question number")
	fl.IntVar(&pmSettings.NPS, "nps", 0, "NPS question number")
	fl.IntSliceVar(&pmSettings.CSI, "csi", nil, "CSI question numbers: importance[,rating]")
	fl.IntVar(&pmSettings.TR, "tr", 0, "TR question number")
	fl.IntVar(&pmSettings.ROTI, "roti", 0, "ROTI question number")
	fl.IntSliceVar(&pmSettings.Segments, "segment", nil, "segmentation question numbers")
	fl.IntSliceVar(&pmSettings.WeightBy, "weight-by", nil, "weighting question numbers")
	fl.StringVar(&pmSettings.Reference, "reference", "", "reference YAML path")
	fl.IntVar(&pmSettings.Respondents, "respondents", 0, "respondent base override")
	fl.StringVar(&pmSettings.SheetName, "sheet-name", "", "XLSX sheet name")
	fl.IntVar(&pmSettings.SheetIndex, "sheet-index", 0, "XLSX 1-based sheet index")
	fl.StringVar(&pmSettings.Delimiter, "delimiter", "", "CSV delimiter")
}
