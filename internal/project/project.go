package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
)

// Project is a named survey whose analysis settings and run history are
// persisted on disk.
type Project struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Settings    *Settings       `json:"settings"`
	Runs        map[string]*Run `json:"runs"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Not serialized: on-disk location of the project.json
	rootDir string `json:"-"`
}

// Settings are the designated questions and input options remembered
// between runs. Zero values mean "not designated".
type Settings struct {
	Mood        int    `json:"mood,omitempty"`
	NPS         int    `json:"nps,omitempty"`
	CSI         []int  `json:"csi,omitempty"`
	TR          int    `json:"tr,omitempty"`
	ROTI        int    `json:"roti,omitempty"`
	Segments    []int  `json:"segments,omitempty"`
	WeightBy    []int  `json:"weight_by,omitempty"`
	Reference   string `json:"reference,omitempty"`
	Respondents int    `json:"respondents,omitempty"`
	SheetName   string `json:"sheet_name,omitempty"`
	SheetIndex  int    `json:"sheet_index,omitempty"`
	Delimiter   string `json:"delimiter,omitempty"`
}

// NewProject constructs an in-memory project. Call Save() to persist.
func NewProject(name, description, rootDir string) *Project {
	return &Project{
		Name:        name,
		Description: description,
		Settings:    &Settings{},
		Runs:        make(map[string]*Run),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		rootDir:     rootDir,
	}
}

// ErrExists is returned by Create when the directory already holds a project.
var ErrExists = errors.New("project already exists")

// Create initialises and saves a project in dir, which must be missing or empty.
func Create(name, description, dir string) (*Project, error) {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("inspect project directory: %w", err)
	case len(entries) > 0:
		if _, err := os.Stat(filepath.Join(dir, utils.ProjectFile)); err == nil {
			return nil, fmt.Errorf("%w at %s", ErrExists, dir)
		}
		return nil, fmt.Errorf("directory %s is not empty; refusing to initialize project", dir)
	}
	p := NewProject(name, description, dir)
	if err := p.Save(); err != nil {
		return nil, err
	}
	return p, nil
}

// LoadProject loads a project.json from the provided directory.
func LoadProject(dir string) (*Project, error) {
	path := filepath.Join(dir, utils.ProjectFile)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("project not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read project: %w", err)
	}
	var p Project
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	if p.Settings == nil {
		p.Settings = &Settings{}
	}
	p.rootDir = dir
	return &p, nil
}

// RootDir returns the on-disk project directory path.
func (p *Project) RootDir() string { return p.rootDir }

// Save writes project.json using atomic write.
func (p *Project) Save() error {
	if p.rootDir == "" {
		return errors.New("project root directory not set")
	}
	if err := utils.EnsureProjectDir(p.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	p.UpdatedAt = time.Now()
	data, err := utils.PrettyJSON(p)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(filepath.Join(p.rootDir, utils.ProjectFile), data)
}

// AddRun appends r to the history under a fresh id and returns that id.
func (p *Project) AddRun(r Run) string {
	if p.Runs == nil {
		p.Runs = make(map[string]*Run)
	}
	r.ID = uuid.NewString()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	p.Runs[r.ID] = &r
	p.UpdatedAt = time.Now()
	return r.ID
}

// History returns the runs oldest first.
func (p *Project) History() []*Run {
	out := make([]*Run, 0, len(p.Runs))
	for _, r := range p.Runs {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Describe renders the settings and history for display.
func (p *Project) Describe() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&sb, "Description: %s\n", p.Description)
	}
	sb.WriteString("[SETTINGS]\n")
	s := p.Settings
	if s == nil {
		s = &Settings{}
	}
	field := func(name, val string) {
		if val != "" {
			fmt.Fprintf(&sb, "  %s: %s\n", name, val)
		}
	}
	field("mood", question(s.Mood))
	field("nps", question(s.NPS))
	field("csi", questions(s.CSI))
	field("tr", question(s.TR))
	field("roti", question(s.ROTI))
	field("segment", questions(s.Segments))
	field("weight-by", questions(s.WeightBy))
	field("reference", s.Reference)
	if s.Respondents > 0 {
		field("respondents", strconv.Itoa(s.Respondents))
	}
	field("sheet-name", s.SheetName)
	if s.SheetIndex > 0 {
		field("sheet-index", strconv.Itoa(s.SheetIndex))
	}
	field("delimiter", s.Delimiter)

	runs := p.History()
	fmt.Fprintf(&sb, "[RUNS] %d\n", len(runs))
	for _, r := range runs {
		fmt.Fprintf(&sb, "  %s  %s  respondents=%d base=%d", r.CreatedAt.Format("2006-01-02 15:04"), filepath.Base(r.Source), r.Respondents, r.Base)
		if r.Segmented {
			sb.WriteString(" segmented")
		}
		if r.Weighted {
			sb.WriteString(" weighted")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func question(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func questions(ns []int) string {
	parts := make([]string, 0, len(ns))
	for _, n := range ns {
		parts = append(parts, strconv.Itoa(n))
	}
	return strings.Join(parts, ",")
}
