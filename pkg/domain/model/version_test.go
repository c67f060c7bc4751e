package model_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/relwatch/pkg/domain/model"
	"github.com/m-mizutani/relwatch/pkg/domain/types"
)

func TestVersionPattern_Match(t *testing.T) {
	tests := []struct {
		name     string
		pattern  string
		tag      string
		expected bool
	}{
		{name: "v4 with prefix", pattern: model.DefaultVersionPattern, tag: "v4.0.0", expected: true},
		{name: "v9 with prefix", pattern: model.DefaultVersionPattern, tag: "v9.12.3", expected: true},
		{name: "4 without prefix", pattern: model.DefaultVersionPattern, tag: "4.1.0", expected: true},
		{name: "v3 rejected", pattern: model.DefaultVersionPattern, tag: "v3.5.0", expected: false},
		{name: "v10 rejected", pattern: model.DefaultVersionPattern, tag: "v10.0.0", expected: false},
		{name: "missing dot", pattern: model.DefaultVersionPattern, tag: "v4", expected: false},
		{name: "match is anchored at start", pattern: model.DefaultVersionPattern, tag: "release-v4.0.0", expected: false},
		{name: "unanchored user pattern is anchored", pattern: `v[4-9]`, tag: "xv4.0.0", expected: false},
		{name: "prefix match is enough", pattern: `v[4-9]`, tag: "v4.0.0-rc1", expected: true},
		{name: "empty tag", pattern: model.DefaultVersionPattern, tag: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := model.NewVersionPattern(tt.pattern)
			gt.NoError(t, err)
			gt.Equal(t, p.Match(tt.tag), tt.expected)
		})
	}
}

func TestVersionPattern_Deterministic(t *testing.T) {
	p, err := model.NewVersionPattern(model.DefaultVersionPattern)
	gt.NoError(t, err)

	for i := 0; i < 3; i++ {
		gt.True(t, p.Match("v4.2.0"))
		gt.False(t, p.Match("v3.2.0"))
	}
}

func TestNewVersionPattern_Invalid(t *testing.T) {
	p, err := model.NewVersionPattern(`v[4-9`)
	gt.Error(t, err)
	gt.Value(t, p).Nil()
	gt.True(t, errors.Is(err, types.ErrInvalidConfig))
}
