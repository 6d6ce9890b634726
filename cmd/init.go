package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/surveyloom-cli/internal/config"
	"github.com/KaramelBytes/surveyloom-cli/internal/project"
	"github.com/KaramelBytes/surveyloom-cli/internal/utils"
)

var (
	initDescription string
)

var initCmd = &cobra.Command{
	Use:   "init <project-name>",
	Short: "Initialize a new survey project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := resolveProjectDirByName(args[0])
		if err != nil {
			return err
		}
		p, err := project.Create(args[0], initDescription, dir)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Project initialized: %s\n", p.RootDir())
		return nil
	},
}

// expandHome resolves a leading "~" against the user's home directory.
func expandHome(dir string) (string, error) {
	if !strings.HasPrefix(dir, "~") {
		return filepath.Clean(dir), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	dir = strings.TrimPrefix(dir, "~")
	dir = strings.TrimPrefix(dir, string(os.PathSeparator))
	dir = strings.TrimPrefix(dir, "/")
	return filepath.Join(home, dir), nil
}

func defaultProjectsDir() (string, error) {
	var dir string
	if cfg != nil && cfg.ProjectsDir != "" {
		d, err := expandHome(cfg.ProjectsDir)
		if err != nil {
			return "", err
		}
		dir = d
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dir = filepath.Join(home, cfgpkg.DirName, "projects")
	}
	if err := utils.EnsureProjectDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

func resolveProjectDirByName(name string) (string, error) {
	if name == "" {
		return "", errors.New("project name is required")
	}
	root, err := defaultProjectsDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, name), nil
}

// loadProjectByName accepts a project name, or a path inside a project
// directory ("." or anything with a separator).
func loadProjectByName(name string) (*project.Project, error) {
	if name == "." || strings.ContainsRune(name, os.PathSeparator) {
		dir, err := utils.FindProjectRoot(name)
		if err != nil {
			return nil, err
		}
		return project.LoadProject(dir)
	}
	dir, err := resolveProjectDirByName(name)
	if err != nil {
		return nil, err
	}
	return project.LoadProject(dir)
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDescription, "desc", "d", "", "project description")
}
