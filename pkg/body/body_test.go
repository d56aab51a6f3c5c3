package body

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBytesRoundTrip(t *testing.T) {
	b := FromBytes([]byte("hello"))
	assert.Equal(t, 5, b.Len())
	assert.False(t, b.IsEmpty())
	assert.Equal(t, []byte("hello"), b.Bytes())
}

func TestEmptyIsEmpty(t *testing.T) {
	assert.True(t, Empty().IsEmpty())
}

func TestTextRejectsInvalidUTF8(t *testing.T) {
	b := FromBytes([]byte{0xff, 0xfe, 0xfd})
	_, err := b.Text()
	assert.Error(t, err)
}

func TestTextAcceptsValidUTF8(t *testing.T) {
	b := FromText("héllo wörld")
	got, err := b.Text()
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", got)
}

func TestFromJSONRoundTrip(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	b, err := FromJSON(payload{Name: "actor"})
	require.NoError(t, err)

	var out payload
	require.NoError(t, b.JSON(&out))
	assert.Equal(t, "actor", out.Name)
}

func TestFromJSONRejectsUnserializable(t *testing.T) {
	_, err := FromJSON(make(chan int))
	assert.Error(t, err)
}

func TestWriteEnforcesLimit(t *testing.T) {
	b := New(4)
	_, err := b.Write([]byte("hello"))
	assert.Error(t, err)
}

func TestCloseRejectsFurtherWrites(t *testing.T) {
	b := New(0)
	require.NoError(t, b.Close())
	_, err := b.Write([]byte("x"))
	assert.Error(t, err)
}

func TestResetReopensForWriting(t *testing.T) {
	b := New(0)
	_, err := b.Write([]byte("a"))
	require.NoError(t, err)
	require.NoError(t, b.Close())

	b.Reset()
	_, err = b.Write([]byte("b"))
	assert.NoError(t, err)
	assert.Equal(t, "b", string(b.Bytes()))
}
