// Package registry stores thinking-tool descriptors and the pairwise
// incorporation rules between them. It is pure data plus validation:
// routing and execution live elsewhere and consult the registry by handle.
package registry

import (
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/xeipuuv/gojsonschema"

	apperrors "github.com/mentat-ai/mentat/internal/errors"
)

// Level is the coarse thinking tier of a tool. It biases routing and
// decides session termination (integrated tools always stop the loop).
type Level string

const (
	LevelFoundation  Level = "foundation"
	LevelSpecialized Level = "specialized"
	LevelIntegrated  Level = "integrated"
)

// ParseLevel normalizes a level string, mapping the legacy aliases
// ("basic" -> foundation, "meta" -> integrated).
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "foundation", "basic":
		return LevelFoundation, true
	case "specialized":
		return LevelSpecialized, true
	case "integrated", "meta":
		return LevelIntegrated, true
	default:
		return "", false
	}
}

// Type classifies what kind of thinking a tool performs.
type Type string

const (
	TypeAnalysis      Type = "analysis"
	TypeGeneration    Type = "generation"
	TypeDecision      Type = "decision"
	TypeStructuring   Type = "structuring"
	TypeOrchestration Type = "orchestration"
	TypeReflection    Type = "reflection"
)

// ParseType normalizes a tool type string.
func ParseType(s string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(s))) {
	case TypeAnalysis, TypeGeneration, TypeDecision, TypeStructuring, TypeOrchestration, TypeReflection:
		return Type(strings.ToLower(strings.TrimSpace(s))), true
	default:
		return "", false
	}
}

// UsageExample shows one way to call a tool.
type UsageExample struct {
	Description string `json:"description"`
	Request     any    `json:"request"`
	Response    any    `json:"response,omitempty"`
}

// UsageLimits optionally bounds how a tool may be used within a session.
type UsageLimits struct {
	MaxCallsPerSession int `json:"max_calls_per_session,omitempty"`
	CooldownMs         int `json:"cooldown_ms,omitempty"`
}

// ToolDescriptor is the registered metadata describing one callable tool.
// The descriptor carries everything routing needs; the callable itself is
// an external collaborator identified by Name.
type ToolDescriptor struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Level           Level          `json:"level"`
	Type            Type           `json:"type"`
	ParameterSchema map[string]any `json:"parameter_schema"`
	ResultSchema    map[string]any `json:"result_schema"`
	Examples        []UsageExample `json:"examples"`
	Tags            []string       `json:"tags"`
	Priority        int            `json:"priority"` // 0-100
	InteractsWith   []string       `json:"interacts_with,omitempty"`
	Limits          *UsageLimits   `json:"limits,omitempty"`
	Version         string         `json:"version"`    // semver
	UpdatedAt       string         `json:"updated_at"` // RFC 3339
	Experimental    bool           `json:"experimental,omitempty"`
	Plugins         []string       `json:"plugins,omitempty"`
}

// Clone returns a deep-enough copy for safe mutation: slices are copied,
// schema maps are shared (treated as immutable after registration).
func (d *ToolDescriptor) Clone() *ToolDescriptor {
	cp := *d
	cp.Examples = append([]UsageExample(nil), d.Examples...)
	cp.Tags = append([]string(nil), d.Tags...)
	cp.InteractsWith = append([]string(nil), d.InteractsWith...)
	cp.Plugins = append([]string(nil), d.Plugins...)
	if d.Limits != nil {
		limits := *d.Limits
		cp.Limits = &limits
	}
	return &cp
}

// InteractsWithTool reports whether other is in the descriptor's
// interactsWith set.
func (d *ToolDescriptor) InteractsWithTool(other string) bool {
	for _, name := range d.InteractsWith {
		if name == other {
			return true
		}
	}
	return false
}

// Validate checks all required descriptor fields and fails with the first
// violated rule.
func (d *ToolDescriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return apperrors.Validation(apperrors.CodeDescriptorInvalid, "descriptor name must not be empty")
	}
	if strings.TrimSpace(d.Description) == "" {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: description must not be empty", d.Name)
	}
	if _, ok := ParseLevel(string(d.Level)); !ok {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: invalid thinking level %q", d.Name, d.Level)
	}
	if _, ok := ParseType(string(d.Type)); !ok {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: invalid tool type %q", d.Name, d.Type)
	}
	if len(d.ParameterSchema) == 0 {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: parameter schema must not be empty", d.Name)
	}
	if err := validateSchema(d.ParameterSchema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDescriptorInvalid,
			"tool "+d.Name+": parameter schema is not a valid JSON schema", apperrors.CategoryValidation)
	}
	if len(d.ResultSchema) == 0 {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: result schema must not be empty", d.Name)
	}
	if err := validateSchema(d.ResultSchema); err != nil {
		return apperrors.Wrap(err, apperrors.CodeDescriptorInvalid,
			"tool "+d.Name+": result schema is not a valid JSON schema", apperrors.CategoryValidation)
	}
	if len(d.Examples) == 0 {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: at least one usage example is required", d.Name)
	}
	if len(d.Tags) == 0 {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: at least one tag is required", d.Name)
	}
	if d.Priority < 0 || d.Priority > 100 {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: priority must be in [0,100], got %d", d.Name, d.Priority)
	}
	if _, err := semver.NewVersion(d.Version); err != nil {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: version %q is not valid semver", d.Name, d.Version)
	}
	if _, err := time.Parse(time.RFC3339, d.UpdatedAt); err != nil {
		return apperrors.Validationf(apperrors.CodeDescriptorInvalid, "tool %q: updatedAt %q is not a valid timestamp", d.Name, d.UpdatedAt)
	}
	return nil
}

// validateSchema compiles the map as a JSON schema; compilation failure
// means the schema is malformed.
func validateSchema(schema map[string]any) error {
	loader := gojsonschema.NewGoLoader(schema)
	_, err := gojsonschema.NewSchema(loader)
	return err
}

// normalize canonicalizes level/type aliases in place. Called after
// successful validation so stored descriptors always use canonical values.
func (d *ToolDescriptor) normalize() {
	if lvl, ok := ParseLevel(string(d.Level)); ok {
		d.Level = lvl
	}
	if typ, ok := ParseType(string(d.Type)); ok {
		d.Type = typ
	}
}
