package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/mod/semver"
)

func TestVersionIsSemantic(t *testing.T) {
	assert.Truef(t, semver.IsValid(Version), "Version %s is not a valid semantic version", Version)
}

func TestBuildAttrs(t *testing.T) {
	attrs := BuildAttrs()
	assert.Len(t, attrs, 8, "Expected four key-value pairs")
	assert.Equal(t, "version", attrs[0])
	assert.Equal(t, Version, attrs[1])
}
