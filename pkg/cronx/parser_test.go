package cronx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr bool
	}{
		{"@every 1h", false},
		{"@hourly", false},
		{"0 */30 * * * *", false},
		{"", true},
		{"   ", true},
		{"*/5 * * * *", true}, // 초 필드 누락
		{"@every banana", true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			err := Validate(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStandardParser_Every(t *testing.T) {
	schedule, err := StandardParser().Parse("@every 1h")
	require.NoError(t, err)

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(time.Hour), schedule.Next(now))
}
