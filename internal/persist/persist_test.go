package persist

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codegraphio/codegraph/pkg/model"
)

func sampleSnapshot() *Snapshot {
	fn := &model.Fn{ID: model.NewID("a.go", "", "main", 1), Name: "main", File: "a.go", Language: "go"}
	return &Snapshot{
		ProjectID:   "deadbeef",
		ProjectRoot: "/tmp/project",
		Functions:   []*model.Fn{fn},
		Files: map[string]*model.FileMeta{
			"a.go": {Path: "a.go", MD5: "abc123", Language: "go"},
		},
	}
}

func TestSaveAndLoadJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := sampleSnapshot()
	require.NoError(t, Save(dir, snap))

	assert.FileExists(t, filepath.Join(dir, "graph.json"))

	loaded, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, loaded.Functions, 1)
	assert.Equal(t, "main", loaded.Functions[0].Name)
	assert.Equal(t, SchemaVersion, loaded.SchemaVersion)
}

func TestChooseFormatRespectsThreshold(t *testing.T) {
	assert.Equal(t, FormatJSON, ChooseFormat(10))
	assert.Equal(t, FormatSQLite, ChooseFormat(SQLiteThreshold+1))
}

func TestSaveWritesProjectRegistry(t *testing.T) {
	dir := t.TempDir()
	projDir := filepath.Join(dir, "proj1")
	snap := sampleSnapshot()
	require.NoError(t, Save(projDir, snap))
	assert.FileExists(t, filepath.Join(dir, "projects.json"))
}
