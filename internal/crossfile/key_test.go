package crossfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyLabel(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{Key{Frame: "FRAB12", Speed: 5}, "FRAB12_speed5.0"},
		{Key{Frame: "FRAB12", Speed: 3.94}, "FRAB12_speed3.94"},
		{Key{Frame: "FU0001", Speed: 0.5}, "FU0001_speed0.5"},
		{Key{Frame: "", Speed: 4}, "_speed4.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.Label())
		})
	}
}
