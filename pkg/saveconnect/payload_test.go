package saveconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayloadEncode(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		want    string
	}{
		{"empty", Payload{}, "{}"},
		{"single", Payload{{Address: RegRefreshDuration, Value: 5}}, `{"1103":5}`},
		{"read", ReadPayload(RegActiveUserMode), `{"1160":1}`},
		{"refresh request", ModeRequestPayload(ModeRefresh), `{"1130":0,"1161":4,"2000":180,"2504":0,"16100":0}`},
		{"crowded request", ModeRequestPayload(ModeCrowded), `{"1130":0,"1161":3,"2000":180,"2504":0,"16100":0}`},
		{"auto request", ModeRequestPayload(ModeAuto), `{"1130":0,"1161":1,"2000":180,"2504":0,"16100":0}`},
		{"negative", Payload{{Address: 1, Value: -2}}, `{"1":-2}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.payload.Encode()
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, " ")
			assert.NotContains(t, got, "\n")
			assert.Equal(t, got, tt.payload.Encode(), "encoding must be deterministic")
		})
	}
}

func TestPayloadPreservesOrder(t *testing.T) {
	p := Payload{{Address: 3, Value: 0}, {Address: 1, Value: 0}, {Address: 2, Value: 0}}
	assert.Equal(t, `{"3":0,"1":0,"2":0}`, p.Encode())
	assert.Equal(t, []int{3, 1, 2}, p.Addresses())
	assert.Equal(t, p.Encode(), p.String())
}

func TestReadPayload(t *testing.T) {
	p := ReadPayload(RegActiveUserMode, RegEcoMode)
	assert.Equal(t, Payload{{Address: 1160, Value: 1}, {Address: 2504, Value: 1}}, p)
	assert.Empty(t, ReadPayload())
}

func TestRegisters(t *testing.T) {
	regs := Registers{"1160": 3, "2504": 0, "x": 9}

	v, ok := regs.Get(RegActiveUserMode)
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = regs.Get(RegRefreshDuration)
	assert.False(t, ok)

	assert.Equal(t, []int{1160, 2504}, regs.Addresses())
}
