package provider

// RepoRef identifies a repository on a source-control platform.
type RepoRef struct {
	Provider string // "github"
	Host     string // empty for owner/repo shorthand
	Owner    string
	Name     string
}

// FullName returns "owner/name".
func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}
