package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langdetect-agent/src/contracts"
)

func TestParseRepoURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantName  string
		wantHost  string
		wantErr   bool
	}{
		{name: "https URL", url: "https://github.com/acme/widget", wantOwner: "acme", wantName: "widget", wantHost: "github.com"},
		{name: "trailing slash", url: "https://github.com/acme/widget/", wantOwner: "acme", wantName: "widget", wantHost: "github.com"},
		{name: ".git suffix", url: "https://github.com/acme/widget.git", wantOwner: "acme", wantName: "widget", wantHost: "github.com"},
		{name: "enterprise host with prefix", url: "https://ghe.example.com/org/team/widget", wantOwner: "team", wantName: "widget", wantHost: "ghe.example.com"},
		{name: "scp style remote", url: "git@github.com:acme/widget.git", wantOwner: "acme", wantName: "widget", wantHost: "github.com"},
		{name: "shorthand", url: "acme/widget", wantOwner: "acme", wantName: "widget"},
		{name: "surrounding whitespace", url: "  https://github.com/acme/widget \n", wantOwner: "acme", wantName: "widget", wantHost: "github.com"},
		{name: "empty", url: "", wantErr: true},
		{name: "owner only", url: "https://github.com/acme", wantErr: true},
		{name: "single word", url: "widget", wantErr: true},
		{name: "only .git", url: "acme/.git", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseRepoURL(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRepoURL)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOwner, ref.Owner)
			assert.Equal(t, tt.wantName, ref.Name)
			assert.Equal(t, tt.wantHost, ref.Host)
			assert.Equal(t, "github", ref.Provider)
		})
	}
}

type stubProvider struct{ opts Options }

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) ListLanguages(ctx context.Context, ref *RepoRef) (contracts.LanguageByteMap, error) {
	return contracts.LanguageByteMap{"Go": 1}, nil
}

func TestGetProvider(t *testing.T) {
	RegisterProvider("stub", func(opts Options) Provider {
		return &stubProvider{opts: opts}
	})

	p, err := GetProvider(&RepoRef{Provider: "stub"}, Options{Token: "t"})
	require.NoError(t, err)
	require.IsType(t, &stubProvider{}, p)
	assert.Equal(t, "t", p.(*stubProvider).opts.Token, "options are passed to the factory")

	_, err = GetProvider(&RepoRef{Provider: "gitlab"}, Options{})
	assert.ErrorIs(t, err, ErrProviderUnknown)
}
