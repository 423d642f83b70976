package main

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Atypix/Smart100-sub002/internal/engine"
)

// discoverReports walks root and collects every run report file under it.
func discoverReports(root string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && d.Name() == engine.ReportFileName {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func main() {
	resultsDir := "results"
	if len(os.Args) > 1 {
		resultsDir = os.Args[1]
	}

	paths, err := discoverReports(resultsDir)
	if err != nil {
		log.Fatalf("Failed to scan %s: %v", resultsDir, err)
	}

	if len(paths) == 0 {
		log.Fatalf("No run reports found under %s", resultsDir)
	}

	p := tea.NewProgram(NewModel(paths), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Failed to run program: %v", err)
	}
}
