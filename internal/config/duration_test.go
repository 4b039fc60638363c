package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want time.Duration
	}{
		{"milliseconds", `d: 250ms`, 250 * time.Millisecond},
		{"seconds", `d: 2s`, 2 * time.Second},
		{"compound", `d: 1m30s`, 90 * time.Second},
		{"bare integer is nanoseconds", `d: 1000`, 1000 * time.Nanosecond},
		{"bare zero", `d: 0`, 0},
		{"explicit nanoseconds", `d: 1000ns`, 1000 * time.Nanosecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc struct {
				D Duration `yaml:"d"`
			}
			require.NoError(t, yaml.Unmarshal([]byte(tt.yaml), &doc))
			assert.Equal(t, tt.want, doc.D.Duration)
		})
	}
}

func TestDuration_UnmarshalInvalid(t *testing.T) {
	var doc struct {
		D Duration `yaml:"d"`
	}
	assert.Error(t, yaml.Unmarshal([]byte(`d: fast`), &doc))
	assert.Error(t, yaml.Unmarshal([]byte(`d: [1, 2]`), &doc))
}

func TestDuration_RoundTrip(t *testing.T) {
	out, err := yaml.Marshal(map[string]Duration{"d": D(100 * time.Millisecond)})
	require.NoError(t, err)

	var doc struct {
		D Duration `yaml:"d"`
	}
	require.NoError(t, yaml.Unmarshal(out, &doc))
	assert.Equal(t, 100*time.Millisecond, doc.D.Duration)
}
