package quayio

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/rs/zerolog"
)

const (
	DefaultEndpoint = "https://quay.io"
	DefaultMaxPages = 1000
)

var (
	ErrInvalidRepository = errors.New("invalid repository")
	ErrPageLimitExceeded = errors.New("page limit exceeded")
)

// Tag is a single entry of the tag listing. quay.io returns more fields
// (manifest digest, timestamps) which are not needed here.
type Tag struct {
	Name string `json:"name"`
}

// TagsPage is one response of GET /api/v1/repository/<repo>/tag/.
// See https://docs.quay.io/api/swagger/#!/tag/listRepoTags
type TagsPage struct {
	Tags          []Tag `json:"tags"`
	Page          int   `json:"page"`
	HasAdditional bool  `json:"has_additional"`
}

// FetchError is returned when a page of tags could not be retrieved.
type FetchError struct {
	URL  string
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch tags page %d (%s): %s", e.Page, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type Client struct {
	endpoint  string
	maxPages  int
	transport Transport
	logger    zerolog.Logger
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		c.endpoint = strings.TrimSuffix(endpoint, "/")
	}
}

// WithMaxPages sets the number of pages after which fetching is aborted.
// Values below 1 keep the default.
func WithMaxPages(maxPages int) Option {
	return func(c *Client) {
		if maxPages > 0 {
			c.maxPages = maxPages
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

func NewClient(transport Transport, options ...Option) Client {
	client := Client{
		endpoint:  DefaultEndpoint,
		maxPages:  DefaultMaxPages,
		transport: transport,
		logger:    zerolog.Nop(),
	}

	for _, option := range options {
		option(&client)
	}

	return client
}

// FetchAllTags returns the names of all tags of repository, following
// pagination until the registry reports no additional pages. A non-empty
// filter is sent as filter_tag_name=like:<filter>; quay.io matches it
// anywhere in the tag name so callers must filter the result themselves.
func (c Client) FetchAllTags(ctx context.Context, repository, filter string) ([]string, error) {
	if _, err := name.NewRepository(repository, name.WithDefaultRegistry("quay.io")); err != nil {
		return nil, fmt.Errorf("%w %q: %s", ErrInvalidRepository, repository, err)
	}

	names := []string{}
	for page := 1; ; page++ {
		uri := c.pageURL(repository, filter, page)
		if page > c.maxPages {
			return nil, &FetchError{URL: uri, Page: page, Err: fmt.Errorf("%w: more than %d pages", ErrPageLimitExceeded, c.maxPages)}
		}

		c.logger.Debug().Str("url", uri).Msg("Fetching tags")

		var response TagsPage
		err := c.transport.GetJSON(ctx, uri, &response)
		if err != nil {
			return nil, &FetchError{URL: uri, Page: page, Err: err}
		}

		c.logger.Debug().
			Int("page", response.Page).
			Bool("has_additional", response.HasAdditional).
			Interface("tags", response.Tags).
			Msg("Received tags")

		for _, tag := range response.Tags {
			names = append(names, tag.Name)
		}

		if !response.HasAdditional {
			return names, nil
		}
	}
}

func (c Client) pageURL(repository, filter string, page int) string {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	if filter != "" {
		query.Set("filter_tag_name", "like:"+filter)
	}

	return fmt.Sprintf("%s/api/v1/repository/%s/tag/?%s", c.endpoint, repository, query.Encode())
}
