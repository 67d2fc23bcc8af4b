package actions

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

type Report struct {
	Repository  string   `toml:"repository"`
	Version     string   `toml:"version"`
	Strict      bool     `toml:"strict"`
	AllTags     bool     `toml:"all-tags"`
	BuildNumber int      `toml:"build-number"`
	Tags        []string `toml:"tags"`
}

func WriteReport(path string, report Report) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	err = toml.NewEncoder(file).Encode(report)
	if err != nil {
		return fmt.Errorf("unable to write report toml: %w", err)
	}

	return nil
}
