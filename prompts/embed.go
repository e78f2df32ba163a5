// Package prompts holds the embedded prompt templates used when asking a
// character to react to a moment, plus the named-substitution helper that
// fills them in.
package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
)

// Version is incremented whenever the default templates change incompatibly.
const Version = "v1"

//go:embed default/**
var defaultFS embed.FS

// MomentReply returns the template for a character commenting on a moment.
// Substitutions: {ai_name}, {user_name}, {moment_content}, {user_comment}.
func MomentReply() (string, error) {
	b, err := fs.ReadFile(defaultFS, "default/moment_reply.md")
	if err != nil {
		return "", fmt.Errorf("moment_reply template missing: %w", err)
	}
	return string(b), nil
}

// Interpolate replaces every {name} placeholder in tmpl with vars[name].
// Placeholders without a binding are left intact so a missing substitution is
// visible in the output rather than silently dropped.
func Interpolate(tmpl string, vars map[string]string) string {
	if len(vars) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
