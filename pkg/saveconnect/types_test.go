package saveconnect

import (
	"testing"

	"github.com/jmylchreest/saveconnectd/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDevice(t *testing.T) {
	d := NewDevice("192.168.1.50")
	assert.Equal(t, "192.168.1.50", d.Host)
	assert.Equal(t, "saveconnect-192.168.1.50", d.DisplayName)
	assert.NotEmpty(t, d.ID)

	assert.Equal(t, d.ID, NewDevice("192.168.1.50").ID, "same address must give the same id")
	assert.NotEqual(t, d.ID, NewDevice("192.168.1.51").ID)
}

func TestParseBoostMode(t *testing.T) {
	for in, want := range map[string]BoostMode{
		"refresh": ModeRefresh,
		"Crowded": ModeCrowded,
		" AUTO ":  ModeAuto,
	} {
		got, err := ParseBoostMode(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseBoostMode("turbo")
	require.Error(t, err)
	assert.True(t, errors.IsInvalidInput(err))
}

func TestBoostModeCodes(t *testing.T) {
	assert.Equal(t, 4, ModeRefresh.RequestCode())
	assert.Equal(t, 3, ModeCrowded.RequestCode())
	assert.Equal(t, 1, ModeAuto.RequestCode())

	reg, ok := ModeRefresh.DurationRegister()
	require.True(t, ok)
	assert.Equal(t, Register{Address: 1103, Value: 5}, reg)

	reg, ok = ModeCrowded.DurationRegister()
	require.True(t, ok)
	assert.Equal(t, Register{Address: 1104, Value: 1}, reg)

	_, ok = ModeAuto.DurationRegister()
	assert.False(t, ok)

	assert.Equal(t, "Refresh (5 minutes)", ModeRefresh.SwitchName())
	assert.Equal(t, "Crowded (1 hour)", ModeCrowded.SwitchName())
	assert.True(t, ModeRefresh.IsSwitch())
	assert.False(t, ModeAuto.IsSwitch())
}

func TestClassifyActiveMode(t *testing.T) {
	tests := []struct {
		code  int
		want  BoostMode
		state SwitchState
	}{
		{3, ModeRefresh, SwitchState{Refresh: true}},
		{2, ModeCrowded, SwitchState{Crowded: true}},
		{1, ModeAuto, SwitchState{}},
		{0, ModeAuto, SwitchState{}},
		{4, ModeAuto, SwitchState{}},
		{-1, ModeAuto, SwitchState{}},
	}
	for _, tt := range tests {
		mode := ClassifyActiveMode(tt.code)
		assert.Equal(t, tt.want, mode, "code %d", tt.code)
		assert.Equal(t, tt.state, SwitchStateFor(mode), "code %d", tt.code)
	}
}

func TestSwitchState(t *testing.T) {
	var s SwitchState
	s = s.With(ModeRefresh, true)
	assert.True(t, s.Get(ModeRefresh))
	assert.False(t, s.Get(ModeCrowded))

	s = s.With(ModeCrowded, true).With(ModeRefresh, false)
	assert.Equal(t, SwitchState{Crowded: true}, s)

	assert.Equal(t, s, s.With(ModeAuto, true))
	assert.False(t, s.Get(ModeAuto))
}
