// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package normalize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/relayout/backend/cpu"
	"github.com/born-ml/relayout/normalize"
	"github.com/born-ml/relayout/tensor"
)

func TestPublicRoundTrip(t *testing.T) {
	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i)
	}
	x, err := tensor.FromSlice(data, tensor.Shape{2, 3, 4})
	require.NoError(t, err)

	backend := cpu.New()
	packed, desc, err := backend.Pack(x, []int{0, 2, 1})
	require.NoError(t, err)

	n, err := normalize.New(normalize.Config{DataFormat: "NHWC", DataType: tensor.Float32}, backend)
	require.NoError(t, err)

	res, err := n.Normalize(packed, desc, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, normalize.Owned, res.Ownership)
	assert.Equal(t, tensor.Shape{2, 3, 4}, res.Tensor.Shape())
	assert.Equal(t, data, res.Tensor.AsFloat32())

	res, err = n.Normalize(x, normalize.StandardLayout(), tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, normalize.Aliased, res.Ownership)
	assert.Same(t, x, res.Tensor)
}

func TestPublicErrors(t *testing.T) {
	_, err := normalize.New(normalize.Config{DataType: tensor.Int32}, cpu.New())
	assert.ErrorIs(t, err, normalize.ErrConfigurationMismatch)
	assert.True(t, normalize.IsFatal(err))

	var nerr *normalize.Error
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, normalize.ErrConfigurationMismatch.Error(), nerr.Kind.String())
}

func TestPublicReconstructShape(t *testing.T) {
	assert.Equal(t, tensor.Shape{4, 2, 3}, normalize.ReconstructShape([]int{2, 3, 4}, []int{4, 1, 12}))
	assert.Equal(t, tensor.Shape{7, 5}, normalize.ReconstructShape([]int{5, 7}, []int{2, 2}))
}
