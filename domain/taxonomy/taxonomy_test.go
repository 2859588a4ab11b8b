package taxonomy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_FiveGroupsInOrder(t *testing.T) {
	tax := Default()

	assert.Equal(t, []string{
		"Growth Factors",
		"Pro-inflammatory",
		"Anti-inflammatory",
		"Chemokines",
		"T Cell / Immune Regulation",
	}, tax.Names())

	members, ok := tax.Members("Anti-inflammatory")
	require.True(t, ok)
	assert.Equal(t, []string{"IL-1RA (42)", "IL-4 (53)", "IL-10 (27)", "IL-13 (35)"}, members)
}

func TestCategoryOf(t *testing.T) {
	tax := Default()

	assert.Equal(t, "Pro-inflammatory", tax.CategoryOf("IL-6 (57)"))
	assert.Equal(t, "Chemokines", tax.CategoryOf(" SDF-1a+B (64) "))
	assert.Equal(t, Uncategorized, tax.CategoryOf("IL-99 (1)"))
	assert.Equal(t, Uncategorized, tax.CategoryOf("IL-6"))
}

func TestCategoryOf_FirstDeclaredGroupWinsTies(t *testing.T) {
	tax, err := New([]FunctionalGroup{
		{Name: "Alpha", Analytes: []string{"X (1)"}},
		{Name: "Beta", Analytes: []string{"X (1)", "Y (2)"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Alpha", tax.CategoryOf("X (1)"))
	assert.Equal(t, "Beta", tax.CategoryOf("Y (2)"))
}

func TestNew_RejectsBadGroups(t *testing.T) {
	tests := []struct {
		name   string
		groups []FunctionalGroup
	}{
		{"empty name", []FunctionalGroup{{Name: " "}}},
		{"reserved all", []FunctionalGroup{{Name: CategoryAll}}},
		{"reserved uncategorized", []FunctionalGroup{{Name: Uncategorized}}},
		{"duplicate", []FunctionalGroup{{Name: "A"}, {Name: "A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.groups)
			assert.Error(t, err)
		})
	}
}

func TestGroups_ReturnsCopies(t *testing.T) {
	tax := Default()
	groups := tax.Groups()
	groups[0].Analytes[0] = "mutated"

	members, _ := tax.Members("Growth Factors")
	assert.Equal(t, "EGF (12)", members[0])
}

func TestLoadFile(t *testing.T) {
	tax, err := LoadFile("")
	require.NoError(t, err)
	assert.Same(t, Default(), tax)

	path := filepath.Join(t.TempDir(), "groups.yaml")
	doc := "groups:\n  - name: Interleukins\n    analytes: [\"IL-6 (57)\", \"IL-10 (27)\"]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	tax, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Interleukins"}, tax.Names())
	assert.Equal(t, "Interleukins", tax.CategoryOf("IL-10 (27)"))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParse_NoGroups(t *testing.T) {
	_, err := Parse([]byte("groups: []\n"))
	assert.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"IL-6 (57)":      "IL-6",
		"SDF-1a+B (64)":  "SDF-1a+B",
		"GRO alpha (26)": "GRO alpha",
		"IL-6":           "IL-6",
		"MIP-1d (76) ":   "MIP-1d",
		"Foo (bar)":      "Foo (bar)",
	}
	for in, want := range tests {
		assert.Equal(t, want, DisplayName(in), "input %q", in)
	}
}
