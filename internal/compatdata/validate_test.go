package compatdata_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/internal/compatdata"
)

func TestValidator_EmbeddedSchemaAcceptsValidDocument(t *testing.T) {
	t.Parallel()

	v, err := compatdata.NewValidator("")
	require.NoError(t, err)

	report, err := v.ValidateBytes("elements/view.json", []byte(viewDoc))
	require.NoError(t, err)

	assert.True(t, report.Valid)
	assert.Equal(t, 100, report.Compliance)
	assert.Empty(t, report.Issues)
}

func TestValidator_ReportsIssues(t *testing.T) {
	t.Parallel()

	v, err := compatdata.NewValidator("")
	require.NoError(t, err)

	doc := `{"elements": {"view": {"__compat": {"support": {
		"android": {"notes": "no version"},
		"ios": [{"version_added": 3}]
	}}}}}`

	report, err := v.ValidateBytes("elements/view.json", []byte(doc))
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Issues)
	assert.Less(t, report.Compliance, 100)
}

func TestValidator_ParseError(t *testing.T) {
	t.Parallel()

	v, err := compatdata.NewValidator("")
	require.NoError(t, err)

	report, err := v.ValidateBytes("bad.json", []byte(`{`))
	require.NoError(t, err)

	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.ParseError)
}

func TestValidator_CustomSchema(t *testing.T) {
	t.Parallel()

	schemaPath := filepath.Join(t.TempDir(), "schema.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{"type": "array"}`), 0o600))

	v, err := compatdata.NewValidator(schemaPath)
	require.NoError(t, err)

	report, err := v.ValidateBytes("x.json", []byte(`{}`))
	require.NoError(t, err)
	assert.False(t, report.Valid)
}

func TestValidator_MissingSchema(t *testing.T) {
	t.Parallel()

	_, err := compatdata.NewValidator(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}

func TestLoader_Validate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "elements/view.json", viewDoc)
	writeFile(t, root, "elements/text.json", `{"elements": {"text": {"__compat": {"support": {"ios": {}}}}}}`)

	v, err := compatdata.NewValidator("")
	require.NoError(t, err)

	report, err := compatdata.NewLoader(root).Validate(context.Background(), v, []compatdata.Category{
		{Path: "elements"},
		{Path: "css/properties"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	assert.False(t, report.OK())
	require.Len(t, report.Files, 2)
	assert.Equal(t, "elements/text.json", report.Files[0].Path)
}
