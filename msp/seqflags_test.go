package msp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUninitializedFlagReadsZero(t *testing.T) {
	s := NewStore()
	require.Equal(t, FlagZero, s.Get(OpActive))
	require.False(t, s.IsSet(OpActive, FlagZero))
	require.False(t, s.IsSet(OpActive, FlagOne))
}

func TestGetNextStartsAtZero(t *testing.T) {
	s := NewStore()
	require.Equal(t, FlagZero, s.GetNext(OpReqPayload))
}

func TestIncrementTogglesAndInitializes(t *testing.T) {
	s := NewStore()

	s.Increment(OpActive)
	require.Equal(t, FlagOne, s.Get(OpActive))
	require.True(t, s.IsSet(OpActive, FlagOne))
	require.Equal(t, FlagZero, s.GetNext(OpActive))

	s.Increment(OpActive)
	require.Equal(t, FlagZero, s.Get(OpActive))
}

func TestSetOverwrites(t *testing.T) {
	s := NewStore()
	s.Set(OpSleep, FlagOne)
	require.Equal(t, FlagOne, s.Get(OpSleep))
	s.Set(OpSleep, FlagZero)
	require.Equal(t, FlagZero, s.Get(OpSleep))
}

func TestFlaglessOpcodesAreNoOps(t *testing.T) {
	s := NewStore()
	require.Equal(t, FlagNone, s.Get(OpNull))
	require.Equal(t, FlagNone, s.GetNext(OpFAck))

	s.Set(OpData, FlagOne)
	require.False(t, s.IsSet(OpData, FlagOne))

	s.Increment(OpTAck)
	require.Equal(t, FlagNone, s.Get(OpTAck))
}

func TestCustomOpcodeFamiliesUseDistinctWords(t *testing.T) {
	s := NewStore()

	const (
		customSys  = Opcode(0x53)
		customReq  = Opcode(0x63)
		customSend = Opcode(0x73)
	)

	s.Increment(customSys)
	require.Equal(t, FlagOne, s.Get(customSys))
	require.Equal(t, FlagZero, s.Get(customReq))
	require.Equal(t, FlagZero, s.Get(customSend))

	s.Increment(customReq)
	require.Equal(t, FlagOne, s.Get(customReq))
	require.Equal(t, FlagOne, s.Get(customSys), "setting customReq's flag must not disturb customSys's word")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := NewStore()
	s.Increment(OpActive)
	s.Increment(OpReqHK)
	s.Set(Opcode(0x65), FlagOne)

	values, inits := s.Snapshot()

	s2 := NewStore()
	s2.Restore(values, inits)

	require.Equal(t, FlagOne, s2.Get(OpActive))
	require.Equal(t, FlagOne, s2.Get(OpReqHK))
	require.True(t, s2.IsSet(Opcode(0x65), FlagOne))
	require.False(t, s2.IsSet(OpSleep, FlagZero))
}

func TestFamilyOfAndIsCustom(t *testing.T) {
	require.Equal(t, FamilyCtrl, OpNull.FamilyOf())
	require.Equal(t, FamilySys, OpActive.FamilyOf())
	require.Equal(t, FamilyReq, OpReqPayload.FamilyOf())
	require.Equal(t, FamilySend, OpSendTime.FamilyOf())

	require.False(t, OpActive.IsCustom())
	require.True(t, Opcode(0x53).IsCustom())
	require.True(t, Opcode(0x5F).IsCustom())
	require.False(t, Opcode(0x4F).IsCustom())
}
