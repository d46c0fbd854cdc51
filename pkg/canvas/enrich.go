package canvas

import (
	"fmt"
	"strings"
)

// =============================================================================
// Keyword Sets - Role and Capability Inference
// =============================================================================

// leadershipKeywords classify an orchestration unit as a leader. Leaders get
// the advanced model tier and more permissive defaults.
var leadershipKeywords = []string{
	"router", "orchestrator", "leader", "lead", "manager",
	"coordinator", "supervisor", "director", "chief",
}

// roleBuckets maps a bucket name to the keywords that select it.
// Buckets are checked in bucketOrder; the first match wins.
var roleBuckets = map[string][]string{
	"coordinator": leadershipKeywords,
	"researcher":  {"research", "crawl", "search", "scrape", "gather", "investigate"},
	"writer":      {"write", "writer", "author", "draft", "content", "copy", "blog", "story"},
	"analyst":     {"analy", "data", "metric", "report", "review"},
	"engineer":    {"code", "program", "develop", "engineer", "build", "debug"},
}

// bucketOrder fixes the precedence of role buckets so inference stays
// deterministic regardless of map iteration order.
var bucketOrder = []string{"coordinator", "researcher", "writer", "analyst", "engineer"}

// fallbackRole is used when no bucket keyword matches the role hint.
const fallbackRole = "specialist"

// creativeKeywords push the temperature up; analyticalKeywords push it down.
var (
	creativeKeywords   = []string{"creative", "write", "brainstorm", "design", "story", "content", "marketing", "idea"}
	analyticalKeywords = []string{"analy", "data", "math", "logic", "code", "review", "audit", "test", "calculat"}
)

// Temperature defaults by disposition.
const (
	temperatureCreative   = 0.9
	temperatureAnalytical = 0.2
	temperatureNeutral    = 0.5
)

// Model tiers assigned during enrichment.
const (
	ModelTierAdvanced = "advanced"
	ModelTierStandard = "standard"
)

// =============================================================================
// EnrichConfig - Category-Dispatched Defaulting
// =============================================================================

// EnrichConfig completes a sparse creation config into a fully usable one.
//
// It builds the complete default object for the category and overlays the
// incoming fields on top. An incoming field whose value is nil or an explicit
// empty string does not override the default: explicit-empty is not
// meaningful input. The result is always immediately usable - no field a
// downstream consumer depends on is left unset.
//
// EnrichConfig is pure: neither incoming nor any shared state is mutated.
// Dispatch is an exhaustive switch over the canonical categories; a category
// outside the closed set gets minimal generic defaults.
func EnrichConfig(t NodeType, label string, incoming map[string]any) map[string]any {
	var defaults map[string]any
	switch t {
	case TypeAgent:
		defaults = agentDefaults(label, incoming)
	case TypeHook:
		defaults = hookDefaults(label)
	case TypeMCPServer:
		defaults = mcpServerDefaults(label)
	case TypeCommand:
		defaults = commandDefaults(label)
	case TypeSkill:
		defaults = skillDefaults(label)
	case TypePool:
		defaults = poolDefaults()
	case TypeDepartment:
		defaults = departmentDefaults(label)
	default:
		defaults = map[string]any{"description": label}
	}
	return overlayConfig(defaults, incoming)
}

// overlayConfig copies defaults and applies incoming on top, field by field.
// nil and empty-string values in incoming are skipped.
func overlayConfig(defaults, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(defaults)+len(incoming))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range incoming {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// =============================================================================
// Category Defaults
// =============================================================================

// agentDefaults builds the full default config for an orchestration unit.
// Role, tier, temperature, and permissions are inferred from the role hint
// and label; nested guardrail, observability, and memory settings are
// assigned through dot-path keys.
func agentDefaults(label string, incoming map[string]any) map[string]any {
	roleHint, _ := incoming["role"].(string)
	role := inferRole(roleHint)
	leader := containsAny(strings.ToLower(roleHint+" "+label), leadershipKeywords)

	tier := ModelTierStandard
	if leader {
		tier = ModelTierAdvanced
	}

	toolAccess := "scoped"
	if leader {
		toolAccess = "all"
	}

	cfg := map[string]any{
		"role":        role,
		"modelTier":   tier,
		"temperature": inferTemperature(roleHint, label),
		"prompt":      defaultPrompt(label, role),
		"permissions": map[string]any{
			"canDelegate": leader,
			"canSpawn":    leader,
			"toolAccess":  toolAccess,
		},
	}

	setPath(cfg, "guardrails.maxTurns", 25)
	setPath(cfg, "guardrails.timeoutSeconds", 300)
	setPath(cfg, "guardrails.requireApproval", false)
	setPath(cfg, "observability.logLevel", "info")
	setPath(cfg, "observability.traceEnabled", true)
	setPath(cfg, "memory.strategy", "sliding-window")
	setPath(cfg, "memory.contextWindow", 32)

	return cfg
}

func hookDefaults(label string) map[string]any {
	return map[string]any{
		"description":    fmt.Sprintf("%s hook", label),
		"event":          "post-task",
		"matcher":        "*",
		"timeoutSeconds": 60,
		"enabled":        true,
	}
}

func mcpServerDefaults(label string) map[string]any {
	return map[string]any{
		"description": fmt.Sprintf("%s tool server", label),
		"transport":   "stdio",
		"command":     "npx",
		"args":        []any{},
		"env":         map[string]any{},
		"autoStart":   true,
	}
}

func commandDefaults(label string) map[string]any {
	return map[string]any{
		"description":  fmt.Sprintf("%s command", label),
		"prompt":       fmt.Sprintf("Run the %s workflow step by step.", label),
		"argumentHint": "[input]",
	}
}

func skillDefaults(label string) map[string]any {
	return map[string]any{
		"description":  fmt.Sprintf("%s capability", label),
		"instructions": fmt.Sprintf("Apply the %s capability when the task calls for it.", label),
		"tags":         []any{},
	}
}

func poolDefaults() map[string]any {
	return map[string]any{
		"strategy":   "round-robin",
		"maxWorkers": 4,
		"scaling":    "fixed",
	}
}

func departmentDefaults(label string) map[string]any {
	return map[string]any{
		"mission":   fmt.Sprintf("The %s department", label),
		"collapsed": false,
	}
}

// =============================================================================
// Inference Helpers
// =============================================================================

// inferRole buckets a free-form role hint into one of the known roles.
func inferRole(roleHint string) string {
	hint := strings.ToLower(roleHint)
	for _, bucket := range bucketOrder {
		if containsAny(hint, roleBuckets[bucket]) {
			return bucket
		}
	}
	return fallbackRole
}

// inferTemperature picks a sampling temperature from the creative and
// analytical keyword sets over role hint and label combined. Creative wins
// when both match, matching how the authoring UI biases toward exploration.
func inferTemperature(roleHint, label string) float64 {
	text := strings.ToLower(roleHint + " " + label)
	if containsAny(text, creativeKeywords) {
		return temperatureCreative
	}
	if containsAny(text, analyticalKeywords) {
		return temperatureAnalytical
	}
	return temperatureNeutral
}

// defaultPrompt generates the instructional prompt used when none is supplied.
func defaultPrompt(label, role string) string {
	return fmt.Sprintf("You are %s, a %s in a multi-agent workflow. "+
		"Work on the tasks routed to you and report results concisely.", label, role)
}

// containsAny reports whether any of the words occurs as a substring of text.
// Text is expected to be lower-cased by the caller.
func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
