package types

import (
	"errors"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

// The engine discriminates failures by errbuilder code plus a stable
// message prefix, the same way the CLI maps errors to exit codes.
// Constructors and predicates live together here so the prefixes can
// never drift apart.

const (
	msgManifestNotFound    = "manifest not found"
	msgManifestInvalid     = "manifest invalid"
	msgNodeModulesExist    = "node_modules already exists"
	msgBundleNotFound      = "bundle not found"
	msgBundlesNotFound     = "no bundle found in any backend"
	msgBundleAlreadyExists = "bundle already exists"
	msgInvalidOptions      = "invalid backend options"
)

func ErrManifestNotFound(cause error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msgManifestNotFound).
		WithCause(cause)
}

func ErrManifestInvalid(detail string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msgManifestInvalid + ": " + detail)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}

func ErrNodeModulesAlreadyExist() error {
	return errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(msgNodeModulesExist + ", re-run with --force to replace it")
}

func ErrBundleNotFound(alias string, hash string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msgBundleNotFound + ": " + hash + " in backend " + alias)
}

func ErrBundlesNotFound(hash string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg(msgBundlesNotFound + " for " + hash)
}

func ErrBundleAlreadyExists(alias string, hash string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeAlreadyExists).
		WithMsg(msgBundleAlreadyExists + ": " + hash + " in backend " + alias)
}

func ErrInvalidOptions(backend string, detail string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(msgInvalidOptions + " for " + backend + ": " + detail)
}

func ErrBackend(alias string, detail string, cause error) error {
	builder := errbuilder.New().
		WithCode(errbuilder.CodeInternal).
		WithMsg("backend " + alias + ": " + detail)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return builder
}

func IsManifestNotFound(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeNotFound &&
		strings.HasPrefix(MessageOf(err), msgManifestNotFound)
}

func IsManifestInvalid(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeInvalidArgument &&
		strings.HasPrefix(MessageOf(err), msgManifestInvalid)
}

func IsNodeModulesAlreadyExist(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeFailedPrecondition &&
		strings.HasPrefix(MessageOf(err), msgNodeModulesExist)
}

func IsBundleNotFound(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeNotFound &&
		strings.HasPrefix(MessageOf(err), msgBundleNotFound)
}

func IsBundlesNotFound(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeNotFound &&
		strings.HasPrefix(MessageOf(err), msgBundlesNotFound)
}

func IsBundleAlreadyExists(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeAlreadyExists &&
		strings.HasPrefix(MessageOf(err), msgBundleAlreadyExists)
}

func IsInvalidOptions(err error) bool {
	return errbuilder.CodeOf(err) == errbuilder.CodeInvalidArgument &&
		strings.HasPrefix(MessageOf(err), msgInvalidOptions)
}

// MessageOf extracts the builder message when err carries one, falling
// back to the plain error text.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
