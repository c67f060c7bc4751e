package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// Repository identifies a GitHub repository
type Repository struct {
	Owner string
	Name  string
}

// ParseRepository parses "owner/name" into a Repository
func ParseRepository(s string) (Repository, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repository{}, goerr.Wrap(types.ErrInvalidConfig, "repository must be in owner/name form",
			goerr.V("repository", s))
	}
	return Repository{Owner: owner, Name: name}, nil
}

func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ReleaseURL builds the web URL of a release tag on the given host
func (r Repository) ReleaseURL(host, tag string) string {
	return fmt.Sprintf("https://%s/%s/releases/tag/%s", host, r.String(), tag)
}

// Release represents the latest release returned by GitHub
type Release struct {
	TagName     string    // Release tag name
	Name        string    // Release name
	HTMLURL     string    // Release page URL
	PublishedAt time.Time // Zero if not published
}
