package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateInstallDir validates a directory handed to the installer.
// Install directories are passed to host commands as arguments:
//   - Directory cannot be empty
//   - Maximum length of 1024 characters
//   - No null bytes or control characters
//
// Installers that splice the directory into a script must additionally
// call [ValidateScriptPath].
func ValidateInstallDir(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "install directory cannot be empty")
	}

	const maxDirLength = 1024
	if len(dir) > maxDirLength {
		return New(ErrCodeInvalidPath, "install directory too long (max %d characters)", maxDirLength)
	}

	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "install directory contains invalid characters")
		}
	}

	return nil
}

// ValidatePathWithin reports INVALID_PATH unless path is root or lies below
// it. Both paths are cleaned before comparison, so ".." segments cannot
// escape root.
func ValidatePathWithin(root, path string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil || !filepath.IsAbs(path) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "%s is outside %s", path, root)
	}
	return nil
}

// ValidateScriptPath rejects paths that cannot be embedded in a quoted
// PowerShell or cmd string.
func ValidateScriptPath(path string) error {
	if strings.ContainsAny(path, `"'`) {
		return New(ErrCodeInvalidPath, "path cannot contain quotes: %s", path)
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// functionNameRegex matches entry point names such as "load_versions".
var functionNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidateFunctionName validates the name of an entry point requested by a host.
func ValidateFunctionName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "function name cannot be empty")
	}
	if len(name) > 64 {
		return New(ErrCodeInvalidInput, "function name too long (max 64 characters)")
	}
	if !functionNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid function name: %q", name)
	}
	return nil
}

// versionTextRegex matches the characters allowed in a version specifier.
var versionTextRegex = regexp.MustCompile(`^[A-Za-z0-9.+\-_^~<>=*|, ]+$`)

// ValidateVersionText performs a cheap syntactic check on a raw version
// specifier before it is parsed. It rejects empty input and characters that
// never appear in versions, requirements or aliases.
func ValidateVersionText(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if len(raw) > 128 {
		return New(ErrCodeInvalidVersion, "version too long (max 128 characters)")
	}
	if !versionTextRegex.MatchString(raw) {
		return New(ErrCodeInvalidVersion, "version contains invalid characters: %q", raw)
	}
	return nil
}
