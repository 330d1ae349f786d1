package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLedgerEvent(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "payment",
			body: `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.payment.completed","client_id":1,"contractor_id":6,"job_id":7,"amount":60,"balance_after":40,"occurred_at":"2020-08-15T19:11:26Z"}`,
		},
		{
			name: "deposit with quoted amount",
			body: `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.deposit.completed","client_id":1,"amount":"40.50","balance_after":"140.50","occurred_at":"2020-08-15T19:11:26Z"}`,
		},
		{name: "not json", body: `{`, wantErr: true},
		{name: "bad uuid", body: `{"event_id":"nope","type":"ledger.deposit.completed","client_id":1,"amount":1}`, wantErr: true},
		{name: "missing id", body: `{"type":"ledger.deposit.completed","client_id":1,"amount":1}`, wantErr: true},
		{
			name:    "unknown type",
			body:    `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.refund","client_id":1,"amount":1}`,
			wantErr: true,
		},
		{
			name:    "payment without job",
			body:    `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.payment.completed","client_id":1,"contractor_id":6,"amount":1}`,
			wantErr: true,
		},
		{
			name:    "zero amount",
			body:    `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.deposit.completed","client_id":1,"amount":0}`,
			wantErr: true,
		},
		{
			name:    "missing client",
			body:    `{"event_id":"0b6f2a1e-8a53-4b55-9a77-2f5f0b1f0c11","type":"ledger.deposit.completed","amount":1}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := ParseLedgerEvent([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidEvent)
				assert.Nil(t, event)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(1), event.ClientID)
		})
	}
}

func TestRetryableError_Unwraps(t *testing.T) {
	err := NewRetryableError(ErrInvalidEvent)
	assert.ErrorIs(t, err, ErrInvalidEvent)
	assert.Contains(t, err.Error(), "retryable error")
}
