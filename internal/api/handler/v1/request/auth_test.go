package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignupRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     SignupRequest
		wantErr bool
	}{
		{
			name:    "valid",
			req:     SignupRequest{Username: "alice", Password: "passw0rd1", ConfirmPassword: "passw0rd1"},
			wantErr: false,
		},
		{
			name:    "missing username",
			req:     SignupRequest{Password: "passw0rd1", ConfirmPassword: "passw0rd1"},
			wantErr: true,
		},
		{
			name:    "missing password",
			req:     SignupRequest{Username: "alice", ConfirmPassword: "passw0rd1"},
			wantErr: true,
		},
		{
			name:    "username too short",
			req:     SignupRequest{Username: "al", Password: "passw0rd1", ConfirmPassword: "passw0rd1"},
			wantErr: true,
		},
		{
			name:    "username with invalid characters",
			req:     SignupRequest{Username: "alice!", Password: "passw0rd1", ConfirmPassword: "passw0rd1"},
			wantErr: true,
		},
		{
			name:    "password too short",
			req:     SignupRequest{Username: "alice", Password: "pass1", ConfirmPassword: "pass1"},
			wantErr: true,
		},
		{
			name:    "password without digit",
			req:     SignupRequest{Username: "alice", Password: "passwords", ConfirmPassword: "passwords"},
			wantErr: true,
		},
		{
			name:    "password without letter",
			req:     SignupRequest{Username: "alice", Password: "12345678", ConfirmPassword: "12345678"},
			wantErr: true,
		},
		{
			name:    "confirmation mismatch",
			req:     SignupRequest{Username: "alice", Password: "passw0rd1", ConfirmPassword: "passw0rd2"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.NoError(t, (&LoginRequest{Username: "alice", Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Password: "x"}).Validate())
	assert.Error(t, (&LoginRequest{Username: "alice"}).Validate())
}
