package canvas

import (
	"strings"
)

// typeSpellings maps recognized input spellings to canonical categories.
// Both the hyphenated lower-case form and the canonical form itself are
// accepted, so round-tripping a canonical value is a no-op.
var typeSpellings = map[string]NodeType{
	"agent":      TypeAgent,
	"hook":       TypeHook,
	"mcp-server": TypeMCPServer,
	"command":    TypeCommand,
	"skill":      TypeSkill,
	"pool":       TypePool,
	"department": TypeDepartment,

	string(TypeAgent):      TypeAgent,
	string(TypeHook):       TypeHook,
	string(TypeMCPServer):  TypeMCPServer,
	string(TypeCommand):    TypeCommand,
	string(TypeSkill):      TypeSkill,
	string(TypePool):       TypePool,
	string(TypeDepartment): TypeDepartment,
}

// typeSeparators are the characters treated as word separators when an
// unrecognized category string is coerced.
const typeSeparators = "- ./"

// NormalizeType maps an arbitrary category string to a canonical NodeType.
//
// Recognized spellings map directly. Anything else is coerced by upper-casing
// and replacing separators with underscores: planning agents upstream may emit
// novel or slightly malformed category strings, and forward-compatible
// coercion beats hard failure there. The caller is expected to log coerced
// values as diagnostics (see Canvas.CreateNode).
func NormalizeType(input string) NodeType {
	trimmed := strings.TrimSpace(input)
	if t, ok := typeSpellings[trimmed]; ok {
		return t
	}
	return CoerceType(trimmed)
}

// CoerceType applies the canonical-form transform to an arbitrary string:
// upper-case, separators replaced with underscores.
func CoerceType(input string) NodeType {
	coerced := strings.Map(func(r rune) rune {
		if strings.ContainsRune(typeSeparators, r) {
			return '_'
		}
		return r
	}, strings.ToUpper(input))
	return NodeType(coerced)
}

// IsCanonicalType reports whether t is a member of the closed category set.
func IsCanonicalType(t NodeType) bool {
	switch t {
	case TypeAgent, TypeHook, TypeMCPServer, TypeCommand, TypeSkill, TypePool, TypeDepartment:
		return true
	}
	return false
}
