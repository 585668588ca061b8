package csftp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePASV(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{
			name:     "standard PASV response",
			input:    "Entering Passive Mode (192,168,1,10,200,15)",
			wantHost: "192.168.1.10",
			wantPort: 51215,
		},
		{
			name:     "trailing period",
			input:    "Entering Passive Mode (10,0,0,5,78,52).",
			wantHost: "10.0.0.5",
			wantPort: 20020,
		},
		{
			name:     "spaces around numbers",
			input:    "Entering Passive Mode ( 127, 0, 0, 1, 4, 1 )",
			wantHost: "127.0.0.1",
			wantPort: 1025,
		},
		{
			name:     "zero address",
			input:    "Entering Passive Mode (0,0,0,0,195,149)",
			wantHost: "0.0.0.0",
			wantPort: 50069,
		},
		{name: "no parentheses", input: "Invalid response", wantErr: true},
		{name: "unclosed", input: "Entering Passive Mode (1,2,3,4,5,6", wantErr: true},
		{name: "five numbers", input: "(192,168,1,1,195)", wantErr: true},
		{name: "seven numbers", input: "(192,168,1,1,195,149,1)", wantErr: true},
		{name: "out of range", input: "(300,168,1,1,195,149)", wantErr: true},
		{name: "port part out of range", input: "(192,168,1,1,256,1)", wantErr: true},
		{name: "negative", input: "(192,168,1,-1,195,149)", wantErr: true},
		{name: "signed", input: "(192,168,1,+1,195,149)", wantErr: true},
		{name: "empty token", input: "(192,168,,1,195,149)", wantErr: true},
		{name: "not a number", input: "(a,b,c,d,e,f)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint, err := parsePASV(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, endpoint.Host)
			assert.Equal(t, tt.wantPort, endpoint.Port)
		})
	}
}

func TestDataEndpointResolve(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		endpoint    DataEndpoint
		controlHost string
		wantAddr    string
	}{
		{
			name:        "normal address",
			endpoint:    DataEndpoint{Host: "192.168.1.5", Port: 12345},
			controlHost: "10.0.0.1",
			wantAddr:    "192.168.1.5:12345",
		},
		{
			name:        "zero address",
			endpoint:    DataEndpoint{Host: "0.0.0.0", Port: 12345},
			controlHost: "10.0.0.1",
			wantAddr:    "10.0.0.1:12345",
		},
		{
			name:        "zero address with IPv6 control host",
			endpoint:    DataEndpoint{Host: "0.0.0.0", Port: 21},
			controlHost: "::1",
			wantAddr:    "[::1]:21",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAddr, tt.endpoint.resolve(tt.controlHost).Addr())
		})
	}
}
