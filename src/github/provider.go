package github

import (
	"context"

	"langdetect-agent/src/contracts"
	"langdetect-agent/src/provider"
)

func init() {
	// Register the GitHub provider factory
	provider.RegisterProvider("github", func(opts provider.Options) provider.Provider {
		return NewProvider(opts.Token, WithBaseURL(opts.BaseURL))
	})
}

// Provider implements provider.Provider for GitHub
type Provider struct {
	client *Client
}

// NewProvider creates a GitHub provider with API token
func NewProvider(token string, opts ...ClientOption) *Provider {
	return &Provider{
		client: NewClient(token, opts...),
	}
}

// Name returns "github"
func (p *Provider) Name() string {
	return "github"
}

// ListLanguages retrieves the repository's language statistics
func (p *Provider) ListLanguages(ctx context.Context, ref *provider.RepoRef) (contracts.LanguageByteMap, error) {
	return p.client.ListLanguages(ctx, ref.Owner, ref.Name)
}

// Client exposes the underlying API client.
func (p *Provider) Client() *Client {
	return p.client
}
