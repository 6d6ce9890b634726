package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/surveyloom-cli/internal/analysis"
	"github.com/KaramelBytes/surveyloom-cli/internal/classify"
	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/KaramelBytes/surveyloom-cli/internal/parser"
	"github.com/KaramelBytes/surveyloom-cli/internal/project"
	"github.com/KaramelBytes/surveyloom-cli/internal/report"
	"github.com/KaramelBytes/surveyloom-cli/internal/survey"
	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

// runFlags are the analysis settings shared by analyze and analyze-batch.
type runFlags struct {
	project     string
	outputDir   string
	csv         bool
	markdown    bool
	html        bool
	mood        int
	nps         int
	csi         []int
	tr          int
	roti        int
	segments    []int
	weightBy    []int
	reference   string
	refStore    bool
	respondents int
	sheetName   string
	sheetIndex  int
	delimiter   string
	parallel    int

	// taken counts output names already used in this invocation; nil
	// means later runs overwrite earlier ones.
	taken map[string]int
}

var anaFlags runFlags

func (f *runFlags) register(c *cobra.Command) {
	fl := c.Flags()
	fl.StringVarP(&f.project, "project", "p", "", "project whose settings to use and whose history records the run")
	fl.StringVarP(&f.outputDir, "output", "o", "", "output directory (default from config output_dir)")
	fl.BoolVar(&f.csv, "csv", false, "also write the main sheet as CSV")
	fl.BoolVar(&f.markdown, "markdown", false, "also write a Markdown report")
	fl.BoolVar(&f.html, "html", false, "also write an HTML report")
	fl.IntVar(&f.mood, "mood", 0, "question number rated with the mood labels")
	fl.IntVar(&f.nps, "nps", 0, "NPS question number")
	fl.IntSliceVar(&f.csi, "csi", nil, "CSI matrix question numbers: importance[,rating]")
	fl.IntVar(&f.tr, "tr", 0, "TR (yes/no) question number")
	fl.IntVar(&f.roti, "roti", 0, "ROTI question number")
	fl.IntSliceVar(&f.segments, "segment", nil, "question numbers to segment by")
	fl.IntSliceVar(&f.weightBy, "weight-by", nil, "question numbers aligned to the reference dimensions (2-3)")
	fl.StringVar(&f.reference, "reference", "", "reference YAML with demographic counts")
	fl.BoolVar(&f.refStore, "reference-store", false, "use the latest reference saved with 'targets import'")
	fl.IntVar(&f.respondents, "respondents", 0, "override the unweighted respondent base")
	fl.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fl.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	fl.IntVar(&f.parallel, "parallel", 0, "segments analysed concurrently (default from config parallelism)")
}

// applyProject fills every setting the user did not pass explicitly from s.
func (f *runFlags) applyProject(c *cobra.Command, s *project.Settings) {
	if s == nil {
		return
	}
	fl := c.Flags()
	setInt := func(name string, dst *int, v int) {
		if !fl.Changed(name) && v != 0 {
			*dst = v
		}
	}
	setInts := func(name string, dst *[]int, v []int) {
		if !fl.Changed(name) && len(v) > 0 {
			*dst = append([]int(nil), v...)
		}
	}
	setStr := func(name string, dst *string, v string) {
		if !fl.Changed(name) && v != "" {
			*dst = v
		}
	}
	setInt("mood", &f.mood, s.Mood)
	setInt("nps", &f.nps, s.NPS)
	setInts("csi", &f.csi, s.CSI)
	setInt("tr", &f.tr, s.TR)
	setInt("roti", &f.roti, s.ROTI)
	setInts("segment", &f.segments, s.Segments)
	setInts("weight-by", &f.weightBy, s.WeightBy)
	setStr("reference", &f.reference, s.Reference)
	setInt("respondents", &f.respondents, s.Respondents)
	setStr("sheet-name", &f.sheetName, s.SheetName)
	setInt("sheet-index", &f.sheetIndex, s.SheetIndex)
	setStr("delimiter", &f.delimiter, s.Delimiter)
}

func (f *runFlags) readerOptions() (parser.Options, error) {
	opt := parser.Options{SheetName: f.sheetName, SheetIndex: f.sheetIndex}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	return opt, nil
}

func (f *runFlags) validate() error {
	if len(f.csi) > 2 {
		return fmt.Errorf("--csi takes 1 or 2 question numbers, got %d", len(f.csi))
	}
	if n := len(f.weightBy); n > 0 && (n < 2 || n > 3) {
		return fmt.Errorf("--weight-by takes 2 or 3 question numbers, got %d", n)
	}
	if len(f.weightBy) > 0 && f.reference == "" && !f.refStore {
		return errors.New("--weight-by needs --reference or --reference-store")
	}
	if f.reference != "" && f.refStore {
		return errors.New("use either --reference or --reference-store, not both")
	}
	return nil
}

func scaleLabels(v []string, def classify.Labels) classify.Labels {
	if len(v) != 3 {
		return def
	}
	return classify.Labels{Top: v[0], Mid: v[1], Bottom: v[2]}
}

// options assembles the pipeline options from the config and the flags.
func (f *runFlags) options(ctx context.Context, c *cfgpkg.Global) (analysis.Options, error) {
	opts := analysis.Options{
		Classify: classify.Options{
			Trash:       survey.NewTrashSet(c.TrashList),
			ScaleLabels: scaleLabels(c.ScaleLabels, classify.DefaultScaleLabels),
			MoodLabels:  scaleLabels(c.MoodLabels, classify.DefaultMoodLabels),
			Mood:        f.mood,
			NPS:         f.nps,
			CSI:         f.csi,
			TR:          f.tr,
			ROTI:        f.roti,
			YesTokens:   c.YesTokens,
			NoTokens:    c.NoTokens,
		},
		Respondents: f.respondents,
		Segments:    f.segments,
		Parallelism: c.Parallelism,
		Logger:      logger,
	}
	if f.parallel > 0 {
		opts.Parallelism = f.parallel
	}

	var ref *targets.Reference
	switch {
	case f.reference != "":
		r, err := targets.LoadReference(f.reference)
		if err != nil {
			return opts, err
		}
		ref = r
	case f.refStore:
		st, err := openStore()
		if err != nil {
			return opts, err
		}
		defer st.Close()
		rs, err := st.LatestReference(ctx)
		if err != nil {
			return opts, fmt.Errorf("load stored reference: %w", err)
		}
		r, err := rs.Reference()
		if err != nil {
			return opts, err
		}
		logger.Info("using stored reference %q (%s)", rs.Name, rs.ID)
		ref = r
	}
	if ref != nil {
		opts.Weighting = &analysis.Weighting{
			Questions: f.weightBy,
			Reference: ref,
			Sampling: targets.Sampling{
				Confidence: c.ConfidenceLevel,
				Proportion: c.Proportion,
				Margin:     c.MarginOfError,
			},
			MaxIterations: c.RakingMaxIterations,
			Tolerance:     c.RakingTolerance,
		}
	}
	return opts, nil
}

func (f *runFlags) outputRoot(c *cfgpkg.Global) (string, error) {
	dir := f.outputDir
	if dir == "" {
		dir = c.OutputDir
	}
	if dir == "" {
		dir = "."
	}
	dir, err := expandHome(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	return dir, nil
}

func layoutFromConfig(c *cfgpkg.Global) analysis.Layout {
	lay := analysis.DefaultLayout()
	if c.HeaderRow > 0 {
		lay.HeaderRow = c.HeaderRow
	}
	if len(c.PageMarkers) > 0 {
		lay.PageMarkers = c.PageMarkers
	}
	return lay
}

// analyzeFile runs the pipeline over one file and writes its outputs. On
// failure every output already written for this file is removed.
func analyzeFile(ctx context.Context, path string, f *runFlags, c *cfgpkg.Global, opts analysis.Options) (*analysis.Report, []string, error) {
	ropt, err := f.readerOptions()
	if err != nil {
		return nil, nil, err
	}
	rows, err := parser.ReadFile(path, ropt)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := analysis.BuildTable(rows, path, layoutFromConfig(c))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	logger.Debug("%s: %d respondents, %d question columns", filepath.Base(path), tbl.Respondents, len(tbl.Questions))

	rep, err := analysis.Run(ctx, tbl, opts)
	if err != nil {
		return nil, nil, err
	}

	dir, err := f.outputRoot(c)
	if err != nil {
		return nil, nil, err
	}
	xlsxPath, csvPath := report.OutputPaths(dir, path)
	if f.taken != nil {
		n := f.taken[xlsxPath]
		f.taken[xlsxPath]++
		if n > 0 {
			suffix := fmt.Sprintf("__%d", n+1)
			logger.Warn("%s: output name in use, writing with suffix %s", filepath.Base(path), suffix)
			xlsxPath = strings.TrimSuffix(xlsxPath, ".xlsx") + suffix + ".xlsx"
			csvPath = strings.TrimSuffix(csvPath, ".csv") + suffix + ".csv"
		}
	}
	stem := strings.TrimSuffix(xlsxPath, filepath.Ext(xlsxPath))

	var written []string
	write := func(p string, fn func() error) error {
		if err := fn(); err != nil {
			return err
		}
		written = append(written, p)
		return nil
	}
	err = write(xlsxPath, func() error { return report.WriteXLSX(rep, xlsxPath) })
	if err == nil && f.csv {
		err = write(csvPath, func() error { return report.WriteCSV(rep, csvPath) })
	}
	if err == nil && f.markdown {
		err = write(stem+".md", func() error { return report.WriteMarkdown(rep, stem+".md") })
	}
	if err == nil && f.html {
		err = write(stem+".html", func() error { return report.WriteHTML(rep, stem+".html") })
	}
	if err != nil {
		for _, p := range written {
			_ = os.Remove(p)
		}
		return nil, nil, err
	}
	return rep, written, nil
}

func recordRun(p *project.Project, path string, rep *analysis.Report, outputs []string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	p.AddRun(project.Run{
		ReportID:    rep.ID,
		Source:      abs,
		Outputs:     outputs,
		Respondents: rep.Respondents,
		Base:        rep.Base,
		Segmented:   rep.Segmented,
		Weighted:    rep.Weighting != nil,
		Skipped:     len(rep.Result.Skipped),
		CreatedAt:   rep.CreatedAt,
	})
	return p.Save()
}

func printSkipped(rep *analysis.Report) {
	if rep.Result == nil || len(rep.Result.Skipped) == 0 {
		return
	}
	fmt.Printf("Skipped questions:%s\n", rep.Result.SkippedLog())
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Aggregate one survey export into an XLSX report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		c, err := requireConfig()
		if err != nil {
			return err
		}
		f := &anaFlags
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
		rep, outputs, err := analyzeFile(cmd.Context(), path, f, c, opts)
		if err != nil {
			return err
		}
		printSkipped(rep)
		for _, o := range outputs {
			fmt.Printf("✓ Wrote %s\n", o)
		}
		if rep.Weighting != nil && !rep.Weighting.Converged {
			fmt.Fprintf(os.Stderr, "⚠ Warning: weights did not converge after %d iterations\n", rep.Weighting.Iterations)
		}
		if p != nil {
			if err := recordRun(p, path, rep, outputs); err != nil {
				return err
			}
			fmt.Printf("✓ Recorded run in project '%s'\n", p.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.register(analyzeCmd)
}
