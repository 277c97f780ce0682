package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validDescriptor returns a descriptor passing all validation rules.
func validDescriptor(name string) *ToolDescriptor {
	return &ToolDescriptor{
		Name:        name,
		Description: "a test thinking tool",
		Level:       LevelFoundation,
		Type:        TypeAnalysis,
		ParameterSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{"type": "string"},
			},
		},
		ResultSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"answer": map[string]any{"type": "string"},
			},
		},
		Examples: []UsageExample{
			{Description: "basic call", Request: map[string]any{"query": "why"}},
		},
		Tags:      []string{"test"},
		Priority:  50,
		Version:   "1.0.0",
		UpdatedAt: "2024-06-01T00:00:00Z",
	}
}

func TestRegisterAndGet(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("mental_model")))

	got := r.Get("mental_model")
	require.NotNil(t, got)
	assert.Equal(t, "mental_model", got.Name)
	assert.Equal(t, 1, r.Count())
	assert.Nil(t, r.Get("absent"))
}

func TestRegisterDuplicateKeepsFirst(t *testing.T) {
	r := New()
	first := validDescriptor("dupe")
	first.Priority = 10
	require.NoError(t, r.Register(first))

	second := validDescriptor("dupe")
	second.Priority = 90
	err := r.Register(second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")

	// registry still contains only the first
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, 10, r.Get("dupe").Priority)
}

func TestRegisterValidationFirstViolation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ToolDescriptor)
		wantMsg string
	}{
		{"empty name", func(d *ToolDescriptor) { d.Name = " " }, "name must not be empty"},
		{"empty description", func(d *ToolDescriptor) { d.Description = "" }, "description must not be empty"},
		{"bad level", func(d *ToolDescriptor) { d.Level = "cosmic" }, "invalid thinking level"},
		{"bad type", func(d *ToolDescriptor) { d.Type = "wizardry" }, "invalid tool type"},
		{"empty param schema", func(d *ToolDescriptor) { d.ParameterSchema = nil }, "parameter schema must not be empty"},
		{"empty result schema", func(d *ToolDescriptor) { d.ResultSchema = nil }, "result schema must not be empty"},
		{"no examples", func(d *ToolDescriptor) { d.Examples = nil }, "usage example"},
		{"no tags", func(d *ToolDescriptor) { d.Tags = nil }, "tag"},
		{"priority out of range", func(d *ToolDescriptor) { d.Priority = 101 }, "priority"},
		{"bad version", func(d *ToolDescriptor) { d.Version = "one.two" }, "semver"},
		{"bad timestamp", func(d *ToolDescriptor) { d.UpdatedAt = "yesterday" }, "timestamp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			d := validDescriptor("tool")
			tt.mutate(d)
			err := r.Register(d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Equal(t, 0, r.Count())
		})
	}
}

func TestLegacyLevelAliases(t *testing.T) {
	r := New()
	d := validDescriptor("old_school")
	d.Level = "basic"
	require.NoError(t, r.Register(d))
	assert.Equal(t, LevelFoundation, r.Get("old_school").Level)

	d2 := validDescriptor("meta_tool")
	d2.Level = "meta"
	require.NoError(t, r.Register(d2))
	assert.Equal(t, LevelIntegrated, r.Get("meta_tool").Level)
}

func TestUpdateRevalidatesMerge(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("tool")))

	desc := "an updated description"
	require.NoError(t, r.Update("tool", Patch{Description: &desc}))
	assert.Equal(t, desc, r.Get("tool").Description)

	// invalid merge is rejected and nothing changes
	bad := 200
	err := r.Update("tool", Patch{Priority: &bad})
	require.Error(t, err)
	assert.Equal(t, 50, r.Get("tool").Priority)

	require.Error(t, r.Update("ghost", Patch{Description: &desc}))
}

func TestUnregisterCascades(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("a")))
	require.NoError(t, r.Register(validDescriptor("b")))
	require.NoError(t, r.Register(validDescriptor("c")))
	require.NoError(t, r.RegisterIncorporationRule("a", "b", nil))
	require.NoError(t, r.RegisterIncorporationRule("c", "a", nil))
	require.Equal(t, 2, r.RuleCount())

	require.NoError(t, r.Unregister("a"))

	// every rule where "a" is source or target is gone
	assert.Equal(t, 0, r.RuleCount())
	assert.Nil(t, r.RuleFor("a", "b"))
	assert.Nil(t, r.RuleFor("c", "a"))

	// "a" is removed from the other descriptors' interactsWith sets
	assert.False(t, r.Get("b").InteractsWithTool("a"))
	assert.False(t, r.Get("c").InteractsWithTool("a"))

	require.Error(t, r.Unregister("a"))
}

func TestRegisterRuleRequiresBothTools(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("a")))

	require.Error(t, r.RegisterIncorporationRule("a", "missing", nil))
	require.Error(t, r.RegisterIncorporationRule("missing", "a", nil))
}

func TestRegisterRuleSymmetricInteractsWith(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("a")))
	require.NoError(t, r.Register(validDescriptor("b")))

	require.NoError(t, r.RegisterIncorporationRule("a", "b", &IncorporationRule{
		Merge: func(src []any, tgt any) (any, error) { return tgt, nil },
	}))

	assert.True(t, r.Get("a").InteractsWithTool("b"))
	assert.True(t, r.Get("b").InteractsWithTool("a"))
	require.NotNil(t, r.RuleFor("a", "b"))
	assert.Nil(t, r.RuleFor("b", "a"))
}

func TestSearchFiltersAndTogether(t *testing.T) {
	r := New()

	a := validDescriptor("alpha")
	a.Level = LevelFoundation
	a.Tags = []string{"analysis", "core"}
	a.Priority = 20
	require.NoError(t, r.Register(a))

	b := validDescriptor("beta")
	b.Level = LevelSpecialized
	b.Type = TypeDecision
	b.Tags = []string{"decision", "core"}
	b.Priority = 80
	b.Experimental = true
	require.NoError(t, r.Register(b))

	c := validDescriptor("gamma_alpha")
	c.Level = LevelFoundation
	c.Tags = []string{"analysis"}
	c.Priority = 60
	require.NoError(t, r.Register(c))

	t.Run("by level", func(t *testing.T) {
		got := r.Search(Filter{Level: LevelFoundation})
		require.Len(t, got, 2)
		// insertion order preserved
		assert.Equal(t, "alpha", got[0].Name)
		assert.Equal(t, "gamma_alpha", got[1].Name)
	})

	t.Run("legacy alias in filter", func(t *testing.T) {
		got := r.Search(Filter{Level: "basic"})
		assert.Len(t, got, 2)
	})

	t.Run("all tags required", func(t *testing.T) {
		got := r.Search(Filter{Tags: []string{"analysis", "core"}})
		require.Len(t, got, 1)
		assert.Equal(t, "alpha", got[0].Name)
	})

	t.Run("substring query", func(t *testing.T) {
		got := r.Search(Filter{Query: "ALPHA"})
		assert.Len(t, got, 2)
	})

	t.Run("priority range", func(t *testing.T) {
		got := r.Search(Filter{MinPriority: 50, MaxPriority: 70})
		require.Len(t, got, 1)
		assert.Equal(t, "gamma_alpha", got[0].Name)
	})

	t.Run("experimental flag", func(t *testing.T) {
		exp := true
		got := r.Search(Filter{Experimental: &exp})
		require.Len(t, got, 1)
		assert.Equal(t, "beta", got[0].Name)
	})

	t.Run("combined", func(t *testing.T) {
		got := r.Search(Filter{Level: LevelFoundation, Tags: []string{"core"}, Query: "alpha"})
		require.Len(t, got, 1)
		assert.Equal(t, "alpha", got[0].Name)
	})
}

func TestSearchIsDeterministic(t *testing.T) {
	r := New()
	for _, name := range []string{"one", "two", "three", "four"} {
		require.NoError(t, r.Register(validDescriptor(name)))
	}

	f := Filter{Tags: []string{"test"}}
	first := r.Search(f)
	second := r.Search(f)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Name, second[i].Name)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(validDescriptor("tool")))

	got := r.Get("tool")
	got.Tags[0] = "mutated"
	got.Description = "mutated"

	fresh := r.Get("tool")
	assert.Equal(t, "test", fresh.Tags[0])
	assert.Equal(t, "a test thinking tool", fresh.Description)
}
