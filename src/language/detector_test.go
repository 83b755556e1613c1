package language

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"langdetect-agent/src/contracts"
	_ "langdetect-agent/src/github"
	"langdetect-agent/src/provider"
)

type fakeProvider struct {
	languages contracts.LanguageByteMap
	err       error
	calls     int
	lastRef   *provider.RepoRef
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) ListLanguages(ctx context.Context, ref *provider.RepoRef) (contracts.LanguageByteMap, error) {
	f.calls++
	f.lastRef = ref
	return f.languages, f.err
}

func TestDominant(t *testing.T) {
	tests := []struct {
		name      string
		languages contracts.LanguageByteMap
		want      string
		wantBytes int64
		wantOK    bool
	}{
		{name: "empty", languages: contracts.LanguageByteMap{}, wantOK: false},
		{name: "nil", languages: nil, wantOK: false},
		{name: "single", languages: contracts.LanguageByteMap{"Go": 10}, want: "Go", wantBytes: 10, wantOK: true},
		{name: "largest wins", languages: contracts.LanguageByteMap{"Go": 500, "Python": 1200}, want: "Python", wantBytes: 1200, wantOK: true},
		{name: "tie goes to lexicographically smallest", languages: contracts.LanguageByteMap{"Rust": 7, "C": 7, "Zig": 7}, want: "C", wantBytes: 7, wantOK: true},
		{name: "zero bytes never win", languages: contracts.LanguageByteMap{"Shell": 0}, wantOK: false},
		{name: "zero next to positive", languages: contracts.LanguageByteMap{"Shell": 0, "Makefile": 3}, want: "Makefile", wantBytes: 3, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Repeat to catch map iteration order leaking into the result.
			for i := 0; i < 20; i++ {
				got, bytes, ok := Dominant(tt.languages)
				require.Equal(t, tt.wantOK, ok)
				require.Equal(t, tt.want, got)
				require.Equal(t, tt.wantBytes, bytes)
			}
		})
	}
}

func TestDetectLanguage_Success(t *testing.T) {
	fake := &fakeProvider{languages: contracts.LanguageByteMap{"Go": 500, "Python": 1200}}
	d := NewDetectorWithProvider(fake, "token", nil)

	res, err := d.DetectLanguage(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "Python", res.Language)
	assert.Equal(t, int64(1200), res.Bytes)
	assert.False(t, res.Fallback)
	assert.Equal(t, "acme/widget", fake.lastRef.FullName())
}

func TestDetectLanguage_EmptyMapFallsBack(t *testing.T) {
	fake := &fakeProvider{languages: contracts.LanguageByteMap{}}
	d := NewDetectorWithProvider(fake, "token", nil)

	res, err := d.DetectLanguage(context.Background(), "https://github.com/acme/empty")
	assert.ErrorIs(t, err, ErrNoLanguages)
	assert.Equal(t, Unknown, res.Language)
	assert.True(t, res.Fallback)
}

func TestDetectLanguage_LookupFailure(t *testing.T) {
	fake := &fakeProvider{err: provider.ErrAuthFailed}
	d := NewDetectorWithProvider(fake, "token", nil)

	res, err := d.DetectLanguage(context.Background(), "https://github.com/acme/widget")

	var lookupErr *LookupError
	require.ErrorAs(t, err, &lookupErr)
	assert.Equal(t, "acme/widget", lookupErr.Repo)
	assert.ErrorIs(t, err, provider.ErrAuthFailed)
	assert.False(t, errors.Is(err, ErrNoLanguages), "transport failure must be distinguishable from an empty map")
	assert.False(t, IsConfigurationError(err))
	assert.Equal(t, Unknown, res.Language)
}

func TestDetectLanguage_ConfigurationErrors(t *testing.T) {
	fake := &fakeProvider{languages: contracts.LanguageByteMap{"Go": 1}}

	t.Run("malformed reference", func(t *testing.T) {
		d := NewDetectorWithProvider(fake, "token", nil)
		res, err := d.DetectLanguage(context.Background(), "https://github.com/acme")
		assert.ErrorIs(t, err, provider.ErrInvalidRepoURL)
		assert.True(t, IsConfigurationError(err))
		assert.Equal(t, Unknown, res.Language)
	})

	t.Run("missing token", func(t *testing.T) {
		d := NewDetectorWithProvider(fake, "  ", nil)
		_, err := d.DetectLanguage(context.Background(), "https://github.com/acme/widget")
		assert.ErrorIs(t, err, ErrMissingToken)
		assert.True(t, IsConfigurationError(err))
	})

	assert.Zero(t, fake.calls, "no API call on configuration errors")
}

func TestDetectLanguage_AgainstGitHubAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widget/languages", r.URL.Path)
		assert.Equal(t, "Bearer gh-token", r.Header.Get("Authorization"))
		w.Write([]byte(`{"Go": 500, "Python": 1200}`))
	}))
	defer server.Close()

	d := NewDetector("gh-token", server.URL, nil)
	res, err := d.DetectLanguage(context.Background(), "https://github.com/acme/widget")
	require.NoError(t, err)
	assert.Equal(t, "Python", res.Language)
}
