// Package language determines the dominant programming language of a repository.
package language

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/logger"
	"langdetect-agent/src/provider"
)

// Unknown is reported when no language could be detected.
const Unknown = "unknown"

var (
	// ErrMissingToken is returned before any request when no credential is configured.
	ErrMissingToken = errors.New("source-control token is required")

	// ErrNoLanguages is returned when the repository reports no language with any bytes.
	ErrNoLanguages = errors.New("no languages found")
)

// LookupError reports a failed call to the source-control API.
type LookupError struct {
	Repo string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("language lookup for %s failed: %v", e.Repo, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err stems from step configuration rather than
// from the remote API.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrMissingToken) || errors.Is(err, provider.ErrInvalidRepoURL) ||
		errors.Is(err, provider.ErrProviderUnknown)
}

// Dominant returns the language with the strictly largest byte count.
// Keys are visited in lexicographic order, so ties go to the smallest name.
// Languages with zero bytes never win.
func Dominant(languages contracts.LanguageByteMap) (string, int64, bool) {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Strings(names)

	var best string
	var bestBytes int64
	for _, name := range names {
		if b := languages[name]; b > bestBytes {
			best, bestBytes = name, b
		}
	}
	return best, bestBytes, best != ""
}

// Detector resolves repository references through a source-control provider.
type Detector struct {
	opts   provider.Options
	logger logger.Logger

	// resolve is replaced in tests.
	resolve func(ref *provider.RepoRef, opts provider.Options) (provider.Provider, error)
}

// NewDetector creates a detector using token against the provider's API at baseURL
// (empty for the platform default).
func NewDetector(token, baseURL string, log logger.Logger) *Detector {
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Detector{
		opts:    provider.Options{Token: token, BaseURL: baseURL},
		logger:  log,
		resolve: provider.GetProvider,
	}
}

// NewDetectorWithProvider creates a detector that always uses p.
func NewDetectorWithProvider(p provider.Provider, token string, log logger.Logger) *Detector {
	d := NewDetector(token, "", log)
	d.resolve = func(*provider.RepoRef, provider.Options) (provider.Provider, error) {
		return p, nil
	}
	return d
}

// DetectLanguage returns the dominant language of the repository at repoURL.
// On error the result still carries Unknown, so callers always have a language to report.
func (d *Detector) DetectLanguage(ctx context.Context, repoURL string) (contracts.DetectionResult, error) {
	fallback := contracts.DetectionResult{Language: Unknown, Fallback: true}

	ref, err := provider.ParseRepoURL(repoURL)
	if err != nil {
		return fallback, err
	}
	if strings.TrimSpace(d.opts.Token) == "" {
		return fallback, ErrMissingToken
	}

	p, err := d.resolve(ref, d.opts)
	if err != nil {
		return fallback, err
	}

	d.logger.Debug("[Detector] Listing languages of %s via %s", ref.FullName(), p.Name())
	languages, err := p.ListLanguages(ctx, ref)
	if err != nil {
		return fallback, &LookupError{Repo: ref.FullName(), Err: err}
	}

	name, bytes, ok := Dominant(languages)
	if !ok {
		return fallback, fmt.Errorf("%w in %s", ErrNoLanguages, ref.FullName())
	}

	d.logger.Debug("[Detector] %s: %s with %d bytes out of %d languages", ref.FullName(), name, bytes, len(languages))
	return contracts.DetectionResult{Language: name, Bytes: bytes}, nil
}
