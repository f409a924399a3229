// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{ID: id, DisplayName: id, Category: "plans", TaskType: id}
}

func TestSaveAndLoadRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	reg := &ActivityRegistry{
		Version:    "1.0.0",
		Activities: []Activity{activity("recommend-plans")},
	}

	require.NoError(t, SaveRegistry(reg, path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, "recommend-plans", loaded.Activities[0].TaskType)
}

func TestLoadRegistry_Missing(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestActivityRegistry_Validate(t *testing.T) {
	tests := []struct {
		name    string
		reg     ActivityRegistry
		wantErr string
	}{
		{"valid", ActivityRegistry{Activities: []Activity{activity("a"), activity("b")}}, ""},
		{"empty", ActivityRegistry{}, "registry contains no activities"},
		{"duplicate", ActivityRegistry{Activities: []Activity{activity("a"), activity("a")}}, "duplicate activity ID: a"},
		{"missing category", ActivityRegistry{Activities: []Activity{{ID: "a", DisplayName: "A", TaskType: "a"}}}, "activity a missing required field: Category"},
		{"admin without auth", ActivityRegistry{Activities: []Activity{func() Activity {
			a := activity("a")
			a.AdminOnly = true
			return a
		}()}}, "activity a is admin only but not authenticated"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestActivityRegistry_Diff(t *testing.T) {
	file := &ActivityRegistry{Activities: []Activity{activity("query-plans"), activity("old-task")}}
	code := &ActivityRegistry{Activities: []Activity{activity("query-plans"), activity("auth-login"), activity("auth-logout")}}

	missing, extra := file.Diff(code)
	assert.Equal(t, []string{"auth-login", "auth-logout"}, missing)
	assert.Equal(t, []string{"old-task"}, extra)
}

func TestSchemaMap(t *testing.T) {
	m, err := SchemaMap(struct {
		Type string `json:"type"`
	}{Type: "object"})
	require.NoError(t, err)
	assert.Equal(t, "object", m["type"])
}
