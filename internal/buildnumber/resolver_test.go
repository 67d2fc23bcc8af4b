package buildnumber_test

import (
	"bytes"
	gocontext "context"
	"errors"
	"testing"

	"github.com/manics/action-get-quayio-tags/internal/buildnumber"
	"github.com/rs/zerolog"
	"github.com/sclevine/spec"

	. "github.com/onsi/gomega"
)

type fetchCall struct {
	Repository string
	Filter     string
}

type fakeFetcher struct {
	calls []fetchCall
	tags  []string
	err   error
}

func (f *fakeFetcher) FetchAllTags(ctx gocontext.Context, repository, filter string) ([]string, error) {
	f.calls = append(f.calls, fetchCall{Repository: repository, Filter: filter})
	if f.err != nil {
		return nil, f.err
	}

	return f.tags, nil
}

func testResolver(t *testing.T, context spec.G, it spec.S) {
	var (
		Expect = NewWithT(t).Expect

		fetcher  *fakeFetcher
		logs     *bytes.Buffer
		resolver buildnumber.Resolver
	)

	it.Before(func() {
		fetcher = &fakeFetcher{}
		logs = bytes.NewBuffer(nil)
		resolver = buildnumber.NewResolver(fetcher, zerolog.New(logs))
	})

	it("returns the matching tags and the next build number", func() {
		fetcher.tags = []string{
			"1.2.3",
			"1.2.33",
			"11.2.3",
			"11.2.33",
			"1.2.3.4",
			"1.2.3a",
			"1.2.3-a",
			"1.2.3-123",
			"1.2.3-1",
			"1.2.3-12",
			"1.2.3-",
			"1.2.3-1a",
		}

		result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
			Repository: "owner/repo",
			Version:    "1.2.3",
			Strict:     true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result).To(Equal(buildnumber.Result{
			Tags:        []string{"1.2.3-123", "1.2.3-1", "1.2.3-12"},
			BuildNumber: 124,
		}))

		Expect(fetcher.calls).To(Equal([]fetchCall{{Repository: "owner/repo", Filter: "1.2.3"}}))

		Expect(logs.String()).To(ContainSubstring("Invalid build number, ignoring tag 1.2.3-a"))
		Expect(logs.String()).To(ContainSubstring("Invalid build number, ignoring tag 1.2.3-1a"))
		Expect(logs.String()).NotTo(ContainSubstring("ignoring tag 1.2.33"))
	})

	it("returns 0 when no tag matches", func() {
		fetcher.tags = []string{"1.2.3", "latest"}

		result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
			Repository: "owner/repo",
			Version:    "1.2.3",
			Strict:     true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Tags).To(BeEmpty())
		Expect(result.BuildNumber).To(Equal(0))
	})

	it("compares build numbers numerically", func() {
		fetcher.tags = []string{"1.2.3-9", "1.2.3-10"}

		result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
			Repository: "owner/repo",
			Version:    "1.2.3",
			Strict:     true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(result.BuildNumber).To(Equal(11))
	})

	it("returns the same result when called twice", func() {
		fetcher.tags = []string{"1.2.3-1", "1.2.3-62", "1.2.3-53"}
		request := buildnumber.Request{Repository: "owner/repo", Version: "1.2.3", Strict: true}

		first, err := resolver.Resolve(gocontext.Background(), request)
		Expect(err).NotTo(HaveOccurred())

		second, err := resolver.Resolve(gocontext.Background(), request)
		Expect(err).NotTo(HaveOccurred())

		Expect(second).To(Equal(first))
		Expect(first.BuildNumber).To(Equal(63))
	})

	context("when strict is false", func() {
		it("allows a version that is not MAJOR.MINOR.PATCH", func() {
			fetcher.tags = []string{
				"1.2-a-b-c",
				"1.2-a-b-c-9",
				"11.2-a-b-c-20",
				"11.2-a-b-cc",
				"1.2-a-b-c-invalid",
				"1.2-a-b-c-99",
			}

			result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
				Repository: "owner/repo",
				Version:    "1.2-a-b-c",
				Strict:     false,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(buildnumber.Result{
				Tags:        []string{"1.2-a-b-c-9", "1.2-a-b-c-99"},
				BuildNumber: 100,
			}))

			Expect(fetcher.calls).To(Equal([]fetchCall{{Repository: "owner/repo", Filter: "1.2-a-b-c"}}))
			Expect(logs.String()).To(ContainSubstring("1.2-a-b-c is not MAJOR.MINOR.PATCH, allowing since strict=false"))
		})
	})

	context("when the version is empty", func() {
		it("returns all tags unfiltered", func() {
			fetcher.tags = []string{"1.2-a-b-c", "1.2.3-2", "1.2-a-b-c-9", "11.2-a-b-cc"}

			result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
				Repository: "owner/repo",
				Version:    "",
				Strict:     true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(buildnumber.Result{
				Tags:        []string{"1.2-a-b-c", "1.2.3-2", "1.2-a-b-c-9", "11.2-a-b-cc"},
				BuildNumber: 0,
			}))

			Expect(fetcher.calls).To(Equal([]fetchCall{{Repository: "owner/repo", Filter: ""}}))
		})
	})

	context("when all tags are requested", func() {
		it("returns all tags and the next build number of the version", func() {
			fetcher.tags = []string{"1.2.39-20", "1.2.3-10", "11.2.3-30", "aaa"}

			result, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
				Repository: "owner/repo",
				Version:    "1.2.3",
				Strict:     true,
				AllTags:    true,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(buildnumber.Result{
				Tags:        []string{"1.2.39-20", "1.2.3-10", "11.2.3-30", "aaa"},
				BuildNumber: 11,
			}))

			Expect(fetcher.calls).To(Equal([]fetchCall{{Repository: "owner/repo", Filter: ""}}))
		})
	})

	context("failure cases", func() {
		it("rejects invalid versions before fetching", func() {
			for _, v := range []string{"1.2.3.4", "1.2.3-0"} {
				_, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
					Repository: "owner/repo",
					Version:    v,
					Strict:     true,
				})
				Expect(err).To(MatchError("invalid version, must be MAJOR.MINOR.PATCH: " + v))

				var versionErr *buildnumber.InvalidVersionError
				Expect(errors.As(err, &versionErr)).To(BeTrue())
			}

			Expect(fetcher.calls).To(BeEmpty())
		})

		it("rejects invalid versions even when all tags are requested", func() {
			_, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
				Repository: "owner/repo",
				Version:    "1.2",
				Strict:     true,
				AllTags:    true,
			})
			Expect(err).To(MatchError(ContainSubstring("MAJOR.MINOR.PATCH")))
			Expect(fetcher.calls).To(BeEmpty())
		})

		it("returns fetch errors unmodified", func() {
			cause := errors.New("failed to fetch tags page 1")
			fetcher.err = cause

			_, err := resolver.Resolve(gocontext.Background(), buildnumber.Request{
				Repository: "owner/repo",
				Version:    "1.2.3",
				Strict:     true,
			})
			Expect(err).To(Equal(cause))
		})
	})
}
