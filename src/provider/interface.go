package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"langdetect-agent/src/contracts"
)

var (
	// ErrInvalidRepoURL is returned by ParseRepoURL for references without an owner and name.
	ErrInvalidRepoURL = errors.New("invalid repository URL")
	// ErrProviderUnknown is returned by GetProvider when no provider is registered for a reference.
	ErrProviderUnknown = errors.New("unknown source-control provider")
)

// Provider defines the interface for source-control platform integrations
type Provider interface {
	// Name returns the provider name (e.g., "github")
	Name() string

	// ListLanguages returns the repository's language to byte-count map
	ListLanguages(ctx context.Context, ref *RepoRef) (contracts.LanguageByteMap, error)
}

// Options configures a provider created through the registry.
type Options struct {
	Token   string
	BaseURL string // empty selects the platform default
}

// Factory creates a Provider.
type Factory func(opts Options) Provider

var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
)

// RegisterProvider makes a provider available by name. Provider packages call it from init.
func RegisterProvider(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// GetProvider returns the provider implementation for a repository reference
func GetProvider(ref *RepoRef, opts Options) (Provider, error) {
	registryMu.RLock()
	factory, ok := factories[ref.Provider]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProviderUnknown, ref.Provider)
	}
	return factory(opts), nil
}

var scpLikePattern = regexp.MustCompile(`^[^/@\s]+@([^:/\s]+):(.+)$`)

// ParseRepoURL extracts owner and repository name from the last two path segments of a
// repository reference. It accepts https URLs, scp-style git remotes and "owner/repo".
func ParseRepoURL(raw string) (*RepoRef, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrInvalidRepoURL)
	}

	var host, path string
	switch {
	case strings.Contains(trimmed, "://"):
		u, err := url.Parse(trimmed)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
		}
		host, path = u.Host, u.Path
	case scpLikePattern.MatchString(trimmed):
		m := scpLikePattern.FindStringSubmatch(trimmed)
		host, path = m[1], m[2]
	default:
		path = trimmed
	}

	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if len(segments) < 2 {
		return nil, fmt.Errorf("%w: %s (want .../owner/repo)", ErrInvalidRepoURL, raw)
	}

	owner := segments[len(segments)-2]
	name := strings.TrimSuffix(segments[len(segments)-1], ".git")
	if name == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRepoURL, raw)
	}

	return &RepoRef{
		Provider: "github",
		Host:     host,
		Owner:    owner,
		Name:     name,
	}, nil
}
