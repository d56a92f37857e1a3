package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorPredicatesMatchTheirConstructors(t *testing.T) {
	hash := "abc123"
	cases := []struct {
		name      string
		err       error
		predicate func(error) bool
	}{
		{"manifest not found", ErrManifestNotFound(nil), IsManifestNotFound},
		{"manifest invalid", ErrManifestInvalid("bad json", nil), IsManifestInvalid},
		{"node_modules exists", ErrNodeModulesAlreadyExist(), IsNodeModulesAlreadyExist},
		{"bundle not found", ErrBundleNotFound("b0", hash), IsBundleNotFound},
		{"bundles not found", ErrBundlesNotFound(hash), IsBundlesNotFound},
		{"bundle already exists", ErrBundleAlreadyExists("b0", hash), IsBundleAlreadyExists},
		{"invalid options", ErrInvalidOptions("local", "directory required"), IsInvalidOptions},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.predicate(tc.err))
		})
	}
}

func TestErrorPredicatesDoNotCrossMatch(t *testing.T) {
	notFound := ErrBundleNotFound("b0", "abc")
	assert.False(t, IsBundlesNotFound(notFound))
	assert.False(t, IsManifestNotFound(notFound))
	assert.False(t, IsBundleAlreadyExists(notFound))

	exhausted := ErrBundlesNotFound("abc")
	assert.False(t, IsBundleNotFound(exhausted) && !IsBundlesNotFound(exhausted))
	assert.False(t, IsManifestNotFound(exhausted))
}

func TestPredicatesRejectPlainErrors(t *testing.T) {
	plain := errors.New("bundle not found somewhere")
	assert.False(t, IsBundleNotFound(plain))
}
