package layout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedHandle string

func (h namedHandle) String() string { return string(h) }

func TestDescriptorValidate(t *testing.T) {
	require.NoError(t, Standard().Validate())
	require.NoError(t, Descriptor{Accelerated: true, Sizes: []int{2, 3}, Strides: []int{1, 2}}.Validate())
	require.NoError(t, Descriptor{Accelerated: true, Sizes: []int{3, 0}, Strides: []int{1, 3}}.Validate())
	require.Error(t, Descriptor{Accelerated: true, Sizes: []int{2, 3}, Strides: []int{1}}.Validate())
	require.Error(t, Descriptor{Accelerated: true, Sizes: []int{2, -1}, Strides: []int{1, 2}}.Validate())
}

func TestDescriptorDims(t *testing.T) {
	assert.Equal(t, 0, Standard().Dims())
	assert.Equal(t, 3, Descriptor{Accelerated: true, Sizes: []int{2, 3, 4}, Strides: []int{4, 1, 12}}.Dims())
}

func TestDescriptorString(t *testing.T) {
	assert.Equal(t, "standard", Standard().String())
	d := Descriptor{Accelerated: true, Sizes: []int{5, 7}, Strides: []int{2, 2}}
	assert.Equal(t, "accelerated(sizes=[5 7] strides=[2 2])", d.String())
}

func TestConverterFunc(t *testing.T) {
	var gotHandle Handle
	conv := ConverterFunc(func(src []byte, dst Handle, out []byte) error {
		gotHandle = dst
		copy(out, src)
		return nil
	})

	out := make([]byte, 3)
	require.NoError(t, conv.Convert([]byte{1, 2, 3}, namedHandle("nchw"), out))
	assert.Equal(t, []byte{1, 2, 3}, out)
	assert.Equal(t, "nchw", gotHandle.String())

	failing := ConverterFunc(func([]byte, Handle, []byte) error { return ErrUnsupportedHandle })
	err := failing.Convert(nil, nil, nil)
	assert.True(t, errors.Is(err, ErrUnsupportedHandle))
}
