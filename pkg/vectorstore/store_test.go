package vectorstore

import (
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestPointIDIsStableForSameLogicalKey(t *testing.T) {
	a := pointID("docs", "guide.md#intro")
	b := pointID("docs", "guide.md#intro")
	assert.Equal(t, a, b)

	c := pointID("docs", "guide.md#setup")
	assert.NotEqual(t, a, c)
}

func TestMergeMetadataInjectsSourceAndKey(t *testing.T) {
	p := Point{
		TenantID: "acme",
		Source:   "docs",
		Key:      "guide.md",
		Metadata: map[string]any{"title": "Guide"},
	}
	merged := mergeMetadata(p)
	assert.Equal(t, "docs", merged["source"])
	assert.Equal(t, "guide.md", merged["key"])
	assert.Equal(t, "Guide", merged["title"])
}

func TestConvertValueHandlesScalarKinds(t *testing.T) {
	str := &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: "hello"}}
	assert.Equal(t, "hello", convertValue(str))

	num := &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: 3.14}}
	assert.Equal(t, 3.14, convertValue(num))

	boolean := &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: true}}
	assert.Equal(t, true, convertValue(boolean))

	assert.Nil(t, convertValue(nil))
}
