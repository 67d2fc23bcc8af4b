package buildnumber

import (
	"context"

	"github.com/rs/zerolog"
)

type TagFetcher interface {
	FetchAllTags(ctx context.Context, repository, filter string) ([]string, error)
}

type Request struct {
	Repository string
	Version    string
	Strict     bool
	// AllTags fetches and returns every tag of the repository instead of
	// only those matching Version.
	AllTags bool
}

type Result struct {
	Tags        []string
	BuildNumber int
}

type Resolver struct {
	fetcher TagFetcher
	logger  zerolog.Logger
}

func NewResolver(fetcher TagFetcher, logger zerolog.Logger) Resolver {
	return Resolver{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Resolve validates the version, fetches the candidate tags and computes the
// next build number.
//
// With an empty version every tag is returned and the build number is 0.
// With AllTags every tag is returned, the build number is still computed from
// the tags matching the version.
func (r Resolver) Resolve(ctx context.Context, request Request) (Result, error) {
	if request.Version != "" {
		err := ValidateVersion(request.Version)
		if err != nil {
			if request.Strict {
				return Result{}, err
			}

			r.logger.Warn().Msgf("%s is not MAJOR.MINOR.PATCH, allowing since strict=false", request.Version)
		}
	}

	filter := request.Version
	if request.AllTags {
		filter = ""
	}

	tags, err := r.fetcher.FetchAllTags(ctx, request.Repository, filter)
	if err != nil {
		return Result{}, err
	}

	if request.Version == "" {
		return Result{Tags: tags, BuildNumber: 0}, nil
	}

	result := Result{
		Tags:        tags,
		BuildNumber: Next(request.Version, tags),
	}

	if !request.AllTags {
		result.Tags = r.matchingTags(request.Version, tags)
	}

	r.logger.Debug().Strs("tags", result.Tags).Int("buildNumber", result.BuildNumber).Msg("Resolved build number")

	return result, nil
}

// registry filters match anywhere in the tag, so everything is checked
// against the exact grammar again
func (r Resolver) matchingTags(version string, tags []string) []string {
	matches := []string{}
	for _, tag := range tags {
		_, hasPrefix, ok := parseBuild(version, tag)
		if ok {
			matches = append(matches, tag)
			continue
		}

		if hasPrefix {
			r.logger.Warn().Msgf("Invalid build number, ignoring tag %s", tag)
		}
	}

	return matches
}
