package dialog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallbackRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		kind ActionKind
		arg  int64
		data string
	}{
		{"yes", ActionYes, 42, "yes_42"},
		{"no", ActionNo, 7, "no_7"},
		{"checkin ok", ActionCheckinOK, 42, "ok_42"},
		{"checkin bad", ActionCheckinBad, 42, "bad_42"},
		{"timezone", ActionTimezone, 10, "tz_10"},
		{"gender", ActionGender, 1, "gender_1"},
		{"trial", ActionTrial, 0, "trial"},
		{"pay", ActionPay, 0, "pay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.data, encodeCallback(tt.kind, tt.arg))

			decoded := decodeCallback(tt.data)
			assert.Equal(t, tt.kind, decoded.Kind)
			assert.Equal(t, tt.arg, decoded.Arg)
		})
	}
}

func TestDecodeCallbackUnknown(t *testing.T) {
	assert.Equal(t, ActionUnknown, decodeCallback("whatever_5").Kind)
	assert.Equal(t, ActionUnknown, decodeCallback("").Kind)
	assert.Equal(t, ActionUnknown, decodeCallback("yes_notanumber").Kind)
}
