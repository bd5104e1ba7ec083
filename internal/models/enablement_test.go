package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnablement(t *testing.T) {
	tests := []struct {
		in      string
		want    Enablement
		wantErr bool
	}{
		{in: "", want: EnablementUnset},
		{in: "  ", want: EnablementUnset},
		{in: "true", want: EnablementEnabled},
		{in: "YES", want: EnablementEnabled},
		{in: "1", want: EnablementEnabled},
		{in: "false", want: EnablementDisabled},
		{in: "Off", want: EnablementDisabled},
		{in: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEnablement(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.in)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnablementFromBool(t *testing.T) {
	on, off := true, false
	assert.Equal(t, EnablementUnset, EnablementFromBool(nil))
	assert.Equal(t, EnablementEnabled, EnablementFromBool(&on))
	assert.Equal(t, EnablementDisabled, EnablementFromBool(&off))
}

func TestEnablement_String(t *testing.T) {
	assert.Equal(t, "unset", Enablement(0).String())
	assert.Equal(t, "enabled", EnablementEnabled.String())
	assert.Equal(t, "disabled", EnablementDisabled.String())
}
