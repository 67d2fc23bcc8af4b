package actions

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Outputs writes step outputs and environment variables through the files
// GitHub passes in GITHUB_OUTPUT and GITHUB_ENV.
// See https://docs.github.com/en/actions/using-workflows/workflow-commands-for-github-actions#environment-files
type Outputs struct {
	OutputFile string
	EnvFile    string
	Stdout     io.Writer
}

func NewOutputs(stdout io.Writer) Outputs {
	return Outputs{
		OutputFile: os.Getenv("GITHUB_OUTPUT"),
		EnvFile:    os.Getenv("GITHUB_ENV"),
		Stdout:     stdout,
	}
}

// SetOutput sets a step output. Without GITHUB_OUTPUT the deprecated
// ::set-output command is printed instead.
func (o Outputs) SetOutput(name, value string) error {
	if o.OutputFile == "" {
		// set-output does not support multiline strings
		value = strings.ReplaceAll(value, "%", "%25")
		value = strings.ReplaceAll(value, "\n", "%0A")
		value = strings.ReplaceAll(value, "\r", "%0D")
		_, err := fmt.Fprintf(o.Stdout, "::set-output name=%s::%s\n", name, value)
		return err
	}

	err := appendCommand(o.OutputFile, name, value)
	if err != nil {
		return fmt.Errorf("failed to set output %q: %w", name, err)
	}

	return nil
}

// ExportVariable makes name available to the following steps of the job. It
// is a no-op outside of GitHub Actions.
func (o Outputs) ExportVariable(name, value string) error {
	if o.EnvFile == "" {
		return nil
	}

	err := appendCommand(o.EnvFile, name, value)
	if err != nil {
		return fmt.Errorf("failed to export variable %q: %w", name, err)
	}

	return nil
}

func appendCommand(path, name, value string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	if !strings.ContainsAny(value, "\r\n") {
		_, err = fmt.Fprintf(file, "%s=%s\n", name, value)
		return err
	}

	delimiter := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(name, delimiter) || strings.Contains(value, delimiter) {
		return fmt.Errorf("unexpected input: value contains delimiter %s", delimiter)
	}

	_, err = fmt.Fprintf(file, "%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter)
	return err
}
