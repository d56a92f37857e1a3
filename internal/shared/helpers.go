// Package shared provides common utility functions used across multiple
// packages in the veendor codebase.
package shared

import (
	"fmt"
	"strings"
)

// BundleTag returns the VCS tag name under which a bundle for the given
// fingerprint is stored by the git backend.
func BundleTag(hash string) string {
	return "veendor-" + hash
}

// BundleFileName returns the archive file name for a fingerprint.
func BundleFileName(hash string) string {
	return hash + ".tar.gz"
}

// SanitizeDirName turns an arbitrary identifier (a repo URL, an alias)
// into a name safe to use as a single directory component.
func SanitizeDirName(value string) string {
	replacer := strings.NewReplacer("/", "_", ":", "_", "@", "_", string('\\'), "_")
	return replacer.Replace(strings.TrimSpace(value))
}

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// CommandError wraps a command execution error with its trimmed output
// for cleaner error messages.
func CommandError(output []byte, err error) error {
	return fmt.Errorf("%s: %w", strings.TrimSpace(string(output)), err)
}
