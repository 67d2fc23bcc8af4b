package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/manics/action-get-quayio-tags/internal/actions"
	"github.com/manics/action-get-quayio-tags/internal/buildnumber"
	"github.com/manics/action-get-quayio-tags/internal/quayio"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	var config struct {
		Repository     string
		Version        string
		Strict         string
		AllTags        string
		Endpoint       string
		MaxPages       int
		RetryTimeLimit string
		LogLevel       string
		Report         string
	}

	flag.StringVar(&config.Repository, "repository", "", "quay.io repository in the form OWNER/NAME")
	flag.StringVar(&config.Version, "version", "", "Version to find the next build number for, empty to list all tags")
	flag.StringVar(&config.Strict, "strict", "true", "Require the version to be MAJOR.MINOR.PATCH (true or false)")
	flag.StringVar(&config.AllTags, "all-tags", "false", "Output all tags instead of only the tags matching the version (true or false)")
	flag.StringVar(&config.Endpoint, "endpoint", quayio.DefaultEndpoint, "Specifies endpoint for sending requests")
	flag.IntVar(&config.MaxPages, "max-pages", quayio.DefaultMaxPages, "Maximum number of tag pages to fetch")
	flag.StringVar(&config.RetryTimeLimit, "retry-time-limit", "1m", "How long to retry failures for")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level outside of GitHub Actions")
	flag.StringVar(&config.Report, "report", "", "Path to write a toml report to")
	flag.Parse()

	if config.Repository == "" {
		fail(errors.New(`missing required input "repository"`))
	}

	strict, err := buildnumber.ParseBoolOption("strict", config.Strict)
	if err != nil {
		fail(err)
	}

	allTags, err := buildnumber.ParseBoolOption("allTags", config.AllTags)
	if err != nil {
		fail(err)
	}

	retryTimeLimit, err := time.ParseDuration(config.RetryTimeLimit)
	if err != nil {
		fail(err)
	}

	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		fail(err)
	}

	logger := actions.NewLogger(os.Stdout, level, actions.Running())

	client := quayio.NewClient(
		quayio.NewHTTPTransport(retryTimeLimit, logger),
		quayio.WithEndpoint(config.Endpoint),
		quayio.WithMaxPages(config.MaxPages),
		quayio.WithLogger(logger),
	)

	logger.Debug().Msgf("Fetching build number for %s version=%s strict=%t allTags=%t", config.Repository, config.Version, strict, allTags)

	result, err := buildnumber.NewResolver(client, logger).Resolve(context.Background(), buildnumber.Request{
		Repository: config.Repository,
		Version:    config.Version,
		Strict:     strict,
		AllTags:    allTags,
	})
	if err != nil {
		fail(err)
	}

	logger.Info().Msgf("Next buildNumber: %d", result.BuildNumber)

	tags, err := json.Marshal(result.Tags)
	if err != nil {
		fail(err)
	}
	buildNumber := strconv.Itoa(result.BuildNumber)

	outputs := actions.NewOutputs(os.Stdout)
	for _, output := range []struct{ name, env, value string }{
		{"tags", "GET_QUAYIO_TAGS_TAGS", string(tags)},
		{"buildNumber", "GET_QUAYIO_TAGS_BUILDNUMBER", buildNumber},
	} {
		err = outputs.SetOutput(output.name, output.value)
		if err != nil {
			fail(err)
		}

		err = outputs.ExportVariable(output.env, output.value)
		if err != nil {
			fail(err)
		}
	}

	if config.Report != "" {
		err = actions.WriteReport(config.Report, actions.Report{
			Repository:  config.Repository,
			Version:     config.Version,
			Strict:      strict,
			AllTags:     allTags,
			BuildNumber: result.BuildNumber,
			Tags:        result.Tags,
		})
		if err != nil {
			fail(err)
		}
	}
}

func fail(err error) {
	fmt.Printf("Error: %s", err)
	os.Exit(1)
}
