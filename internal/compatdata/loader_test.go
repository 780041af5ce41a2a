package compatdata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

const viewDoc = `{
  "elements": {
    "view": {
      "__compat": {
        "description": "Basic container",
        "support": {
          "android": {"version_added": "1.0"},
          "ios": {"version_added": "1.0"}
        }
      },
      "clip-radius": {
        "__compat": {
          "support": {"android": {"version_added": "3.4"}}
        }
      }
    }
  }
}`

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()

	full := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
	require.NoError(t, os.WriteFile(full, []byte(content), 0o600))
}

func TestLoader_LoadCategory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "elements/view.json", viewDoc)
	writeFile(t, root, "elements/a/text.json", `{"elements": {"text": {}}}`)
	writeFile(t, root, "elements/README.md", "ignored")

	loader := compatdata.NewLoader(root)

	in, err := loader.LoadCategory(context.Background(), compatdata.Category{
		Path: "elements", DisplayName: "Elements", DocPrefix: "/api/elements",
	})
	require.NoError(t, err)

	assert.False(t, in.Missing)
	assert.Equal(t, "Elements", in.DisplayName)
	require.Len(t, in.Documents, 2)
	assert.Equal(t, "elements/a/text", in.Documents[0].Path)
	assert.Equal(t, "elements/view", in.Documents[1].Path)

	view := in.Documents[1].Root.Child("elements").Child("view")
	require.NotNil(t, view)
	assert.Equal(t, compat.NodeMixed, view.Kind())
}

func TestLoader_MissingCategory(t *testing.T) {
	t.Parallel()

	loader := compatdata.NewLoader(t.TempDir())

	in, err := loader.LoadCategory(context.Background(), compatdata.Category{Path: "lynx-api/global"})
	require.NoError(t, err)
	assert.True(t, in.Missing)
	assert.Empty(t, in.Documents)
}

func TestLoader_MalformedJSONNamesFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "css/properties/broken.json", `{"css": `)

	_, err := compatdata.NewLoader(root).LoadCategory(context.Background(), compatdata.Category{Path: "css/properties"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "css/properties/broken")
}

func TestLoader_LoadHistory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "version.json", `{
  "version": "3.5",
  "history": [
    {"version": "3.4", "release_date": "2025-06-01"},
    {"version": "3.5"}
  ]
}`)

	history, err := compatdata.NewLoader(root).LoadHistory()
	require.NoError(t, err)
	assert.Equal(t, []compat.VersionEntry{
		{Version: "3.4", ReleaseDate: "2025-06-01"},
		{Version: "3.5"},
	}, history)
}

func TestLoader_LoadHistoryMissingFile(t *testing.T) {
	t.Parallel()

	history, err := compatdata.NewLoader(t.TempDir()).LoadHistory()
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestLoader_Load(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "elements/view.json", viewDoc)
	writeFile(t, root, "releases.json", `{"history": [{"version": "1.0"}]}`)

	loader := compatdata.NewLoader(root, compatdata.WithVersionFile("releases.json"))

	in, err := loader.Load(context.Background(), []compatdata.Category{
		{Path: "elements", DisplayName: "Elements"},
		{Path: "lynx-api/global", DisplayName: "Global"},
	})
	require.NoError(t, err)

	require.Len(t, in.Categories, 2)
	assert.False(t, in.Categories[0].Missing)
	assert.True(t, in.Categories[1].Missing)
	assert.Equal(t, []compat.VersionEntry{{Version: "1.0"}}, in.History)
}

func TestLoader_Discover(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	for _, dir := range []string{"elements", "css", "scripts", ".git", "types", "lynx-api"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o750))
	}

	writeFile(t, root, "version.json", `{}`)

	loader := compatdata.NewLoader(root)

	dirs, err := loader.Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"css", "elements", "lynx-api"}, dirs)

	unconfigured, err := loader.Unconfigured([]compatdata.Category{
		{Path: "elements"},
		{Path: "css/properties"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lynx-api"}, unconfigured)
}

func TestLoader_DiscoverCustomExcludes(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "elements"), 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "drafts"), 0o750))

	dirs, err := compatdata.NewLoader(root, compatdata.WithExcludeDirs([]string{"drafts"})).Discover()
	require.NoError(t, err)
	assert.Equal(t, []string{"elements"}, dirs)
}

func TestLoader_FilesRejectsFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "plain.json", `{}`)

	_, err := compatdata.NewLoader(root).Files(filepath.Join(root, "plain.json"))
	require.ErrorIs(t, err, compatdata.ErrNotDirectory)
}
