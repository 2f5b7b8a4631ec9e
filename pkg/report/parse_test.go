package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Status
		wantErr bool
	}{
		{
			name: "normal value",
			line: "Soil Moisture: 0\n",
			want: Status{Kind: KindValue, Label: "Soil Moisture", Code: 0, Text: "Soil Moisture: 0"},
		},
		{
			name: "alarm value with CRLF",
			line: "Rain: 1\r\n",
			want: Status{Kind: KindValue, Label: "Rain", Code: 1, Text: "Rain: 1"},
		},
		{
			name: "label containing separator",
			line: "Zone: A: 1",
			want: Status{Kind: KindValue, Label: "Zone: A", Code: 1, Text: "Zone: A: 1"},
		},
		{
			name: "reading failure",
			line: "Error: DHT11 sensor reading failed\n",
			want: Status{Kind: KindError, Label: "DHT11", Text: "Error: DHT11 sensor reading failed"},
		},
		{
			name: "init failure",
			line: "Error: ADC initialization failed",
			want: Status{Kind: KindInitFailure, Label: "ADC", Text: "Error: ADC initialization failed"},
		},
		{
			name: "greeting",
			line: "Welcome to Weather Station\n",
			want: Status{Kind: KindGreeting, Text: "Welcome to Weather Station"},
		},
		{
			name:    "empty",
			line:    "\n",
			wantErr: true,
		},
		{
			name:    "missing separator",
			line:    "Rain 1",
			wantErr: true,
		},
		{
			name:    "missing label",
			line:    ": 1",
			wantErr: true,
		},
		{
			name:    "non numeric code",
			line:    "Rain: x",
			wantErr: true,
		},
		{
			name:    "code out of range",
			line:    "Rain: 2",
			wantErr: true,
		},
		{
			name:    "unknown error line",
			line:    "Error: something odd",
			wantErr: true,
		},
		{
			name:    "error without label",
			line:    "Error:  sensor reading failed",
			wantErr: true,
		},
		{
			name:    "too long",
			line:    strings.Repeat("x", 200) + ": 1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLine_RoundTrip(t *testing.T) {
	for _, line := range []string{
		"Soil Moisture: 0\n",
		"Rain: 1\n",
		"Error: DHT11 sensor reading failed\n",
		InitFailureLine("USART"),
	} {
		st, err := ParseLine(line)
		require.NoError(t, err, line)
		assert.Equal(t, strings.TrimSuffix(line, "\n"), st.Text)
	}
}
