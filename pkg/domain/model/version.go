package model

import (
	"regexp"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

// VersionRecord is the persisted fact of the last notified version
type VersionRecord struct {
	LastVersion string    `json:"last_version" firestore:"last_version"`
	LastCheck   time.Time `json:"last_check" firestore:"last_check"`
}

// DefaultVersionPattern accepts major versions 4 to 9 with an optional "v" prefix
const DefaultVersionPattern = `^v?[4-9]\.`

// VersionPattern decides which release tags are monitored. The expression is
// anchored at the start of the tag.
type VersionPattern struct {
	re *regexp.Regexp
}

// NewVersionPattern compiles a monitored version pattern
func NewVersionPattern(expr string) (*VersionPattern, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)`)
	if err != nil {
		return nil, goerr.Wrap(types.ErrInvalidConfig, "invalid version pattern",
			goerr.V("pattern", expr), goerr.V("cause", err.Error()))
	}
	return &VersionPattern{re: re}, nil
}

// Match reports whether tag is a monitored version
func (p *VersionPattern) Match(tag string) bool {
	return p.re.MatchString(tag)
}

func (p *VersionPattern) String() string {
	return p.re.String()
}
