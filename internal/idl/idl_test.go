package idl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateWordSizes(t *testing.T) {
	ok := &Method{MsgID: 0, Args: []ArgDef{{KindWord, 4}, {KindWord, 8}}}
	assert.NoError(t, ok.Validate())

	bad := &Method{MsgID: 0, Args: []ArgDef{{KindWord, 2}}}
	assert.Error(t, bad.Validate())
}

func TestValidateReservedKind(t *testing.T) {
	m := &Method{MsgID: 0, Args: []ArgDef{{Kind(5), 0}}}
	assert.Error(t, m.Validate())
}

func TestValidateUnknownKind(t *testing.T) {
	m := &Method{MsgID: 0, Args: []ArgDef{{Kind(12), 0}}}
	assert.Error(t, m.Validate())
}

func TestValidateInnerTypeIndex(t *testing.T) {
	m := &Method{MsgID: 0, Args: []ArgDef{{KindType, 0}}}
	assert.Error(t, m.Validate(), "no inner types defined")

	m.InnerTypes = []InnerType{{Elems: []ArgDef{{KindBlob, 8}}}}
	assert.NoError(t, m.Validate())
}

func TestValidateInnerTypeNesting(t *testing.T) {
	// An inner type may only contain blobs and blob sequences.
	m := &Method{
		MsgID:      0,
		Args:       []ArgDef{{KindTypeSeq, 0}},
		InnerTypes: []InnerType{{Elems: []ArgDef{{KindTypeSeq, 0}}}},
	}
	assert.Error(t, m.Validate())

	m.InnerTypes[0].Elems = []ArgDef{{KindWord, 4}}
	assert.Error(t, m.Validate())
}

func TestExtended(t *testing.T) {
	assert.False(t, (&Method{MsgID: 30}).Extended())
	assert.True(t, (&Method{MsgID: 31}).Extended())
	assert.True(t, (&Method{MsgID: 32}).Extended())
}

func TestPrimSizes(t *testing.T) {
	inner := InnerType{Elems: []ArgDef{
		{KindBlob, 12},
		{KindBlobSeq, 2},
		{KindBlob, 4},
	}}

	primIn, primOut := inner.PrimSizes(false)
	require.EqualValues(t, 12+4+4, primIn)
	require.EqualValues(t, 0, primOut)

	primIn, primOut = inner.PrimSizes(true)
	require.EqualValues(t, 4, primIn, "seq counts stay on the input side")
	require.EqualValues(t, 16, primOut)

	assert.Equal(t, 1, inner.SeqCount())
}
