package compat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/compatstats/pkg/compat"
)

func TestParseDocument_KeepsOrderAndVariants(t *testing.T) {
	t.Parallel()

	doc, err := compat.ParseDocument("elements/view", []byte(`{
		"elements": {
			"view": {
				"__compat": {
					"description": "<view>",
					"support": {"android": {"version_added": "1.0"}}
				},
				"zeta": {"__compat": {"support": {}}},
				"alpha": {"__compat": {"support": {}}},
				"tags": ["ignored"],
				"count": 3
			}
		}
	}`))
	require.NoError(t, err)
	assert.Equal(t, "elements/view", doc.Path)

	view := doc.Root.Child("elements").Child("view")
	require.NotNil(t, view)
	assert.Equal(t, compat.NodeMixed, view.Kind())
	assert.Equal(t, "<view>", view.Compat.Description)

	require.Len(t, view.Children, 2)
	assert.Equal(t, "zeta", view.Children[0].Key)
	assert.Equal(t, "alpha", view.Children[1].Key)
	assert.Equal(t, compat.NodeLeaf, view.Children[0].Node.Kind())

	assert.Equal(t, compat.NodeInternal, doc.Root.Child("elements").Kind())
	assert.Nil(t, view.Child("missing"))
}

func TestNode_KindEmpty(t *testing.T) {
	t.Parallel()

	var nilNode *compat.Node

	assert.Equal(t, compat.NodeEmpty, nilNode.Kind())
	assert.Equal(t, compat.NodeEmpty, (&compat.Node{}).Kind())
}

func TestParseDocument_CompatWithoutSupport(t *testing.T) {
	t.Parallel()

	doc, err := compat.ParseDocument("lynx-api/a", []byte(`{"a": {"__compat": {}}}`))
	require.NoError(t, err)

	leaf := doc.Root.Child("a")
	require.NotNil(t, leaf)
	assert.Equal(t, compat.Unsupported(), compat.ResolvePlatform(leaf.Compat, "android"))
}

func TestParseDocument_Errors(t *testing.T) {
	t.Parallel()

	_, err := compat.ParseDocument("bad", []byte(`{"a": `))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse bad")

	_, err = compat.ParseDocument("array", []byte(`[1, 2]`))
	require.ErrorIs(t, err, compat.ErrNotObject)
}
