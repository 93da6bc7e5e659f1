package main

import (
	"image"
	"testing"

	"github.com/otiai10/gosseract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildElements_FiltersAndComputesCenters(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(10, 20, 110, 60), Word: " hello ", Confidence: 91},
		{Box: image.Rect(0, 0, 10, 10), Word: "   ", Confidence: 99},
		{Box: image.Rect(5, 5, 50, 25), Word: "noise", Confidence: 12},
	}

	elements := buildElements(boxes, 0.3)
	require.Len(t, elements, 1)

	el := elements[0]
	assert.Equal(t, "hello", el.Text)
	assert.InDelta(t, 0.91, el.Confidence, 0.001)
	assert.Equal(t, 10, el.X)
	assert.Equal(t, 20, el.Y)
	assert.Equal(t, 100, el.Width)
	assert.Equal(t, 40, el.Height)
	assert.Equal(t, 60, el.CenterX)
	assert.Equal(t, 40, el.CenterY)
}

func TestBuildElements_FloorIsExclusive(t *testing.T) {
	boxes := []gosseract.BoundingBox{
		{Box: image.Rect(0, 0, 10, 10), Word: "exactly", Confidence: 30},
		{Box: image.Rect(0, 0, 10, 10), Word: "above", Confidence: 30.5},
	}

	elements := buildElements(boxes, 0.3)
	require.Len(t, elements, 1)
	assert.Equal(t, "above", elements[0].Text)
}

func TestBuildElements_Empty(t *testing.T) {
	assert.Empty(t, buildElements(nil, 0.3))
}
