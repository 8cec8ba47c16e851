package saveconnect

import (
	"sort"
	"strconv"
	"strings"
)

// Register is a single register address and the value to send for it
type Register struct {
	Address int `json:"address"`
	Value   int `json:"value"`
}

// Payload is an ordered set of registers sent in one request. The device
// receives them in insertion order.
type Payload []Register

// readPlaceholder is the value sent for each register in a read request
const readPlaceholder = 1

// ReadPayload builds a read request for the given register addresses
func ReadPayload(addrs ...int) Payload {
	p := make(Payload, 0, len(addrs))
	for _, a := range addrs {
		p = append(p, Register{Address: a, Value: readPlaceholder})
	}
	return p
}

// ModeRequestPayload is the combined write that selects a user mode. The
// device expects the airflow, set point, eco and 16100 registers in the same
// request as the mode change.
func ModeRequestPayload(m BoostMode) Payload {
	return Payload{
		{Address: RegManualAirflowSAF, Value: 0},
		{Address: RegUserModeRequest, Value: m.RequestCode()},
		{Address: RegTemperatureSetSP, Value: TemperatureSetPoint},
		{Address: RegEcoMode, Value: 0},
		{Address: RegUnknown16101, Value: 0},
	}
}

// Encode renders the payload as the compact JSON object the device reads
// from the query string, e.g. {"1103":5}. Output carries no whitespace.
func (p Payload) Encode() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, r := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strconv.Itoa(r.Address))
		b.WriteString(`":`)
		b.WriteString(strconv.Itoa(r.Value))
	}
	b.WriteByte('}')
	return b.String()
}

// String implements fmt.Stringer
func (p Payload) String() string {
	return p.Encode()
}

// Addresses returns the register addresses in payload order
func (p Payload) Addresses() []int {
	out := make([]int, len(p))
	for i, r := range p {
		out[i] = r.Address
	}
	return out
}

// Registers is a decoded read response keyed by register address
type Registers map[string]int

// Get returns the value reported for addr
func (r Registers) Get(addr int) (int, bool) {
	v, ok := r[strconv.Itoa(addr)]
	return v, ok
}

// Addresses returns the reported register addresses in ascending order.
// Keys that are not numeric are skipped.
func (r Registers) Addresses() []int {
	out := make([]int, 0, len(r))
	for k := range r {
		if a, err := strconv.Atoi(k); err == nil {
			out = append(out, a)
		}
	}
	sort.Ints(out)
	return out
}
