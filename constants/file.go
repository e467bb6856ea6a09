package constants

import "strings"

// AllowedExtensions holds the plain-text document extensions the inbox
// watcher and upload handler accept. Document-to-text conversion happens
// upstream; binary formats are out of scope here.
var AllowedExtensions = map[string]struct{}{
	"txt":  {},
	"md":   {},
	"text": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FallbackConfidence is the fixed low confidence attached to analyses the
// reasoning service could not structure (unparseable output or the service
// being disabled entirely).
const FallbackConfidence float32 = 0.30

// MaxPromptChars bounds how much raw document text is embedded into a
// reasoning prompt.
const MaxPromptChars = 3000
