package gateway_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/smallbiznis/fieldbill/internal/gateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelopeSuccess(t *testing.T) {
	env, err := gateway.DecodeEnvelope(gateway.Reply{
		Status: http.StatusOK,
		Body:   []byte(`{"isSuccess":true,"responseText":"Success","responseData":{"customerId":42}}`),
	})
	require.NoError(t, err)
	require.NoError(t, env.Err())

	var data struct {
		CustomerID int64 `json:"customerId"`
	}
	require.NoError(t, env.DecodeData(&data))
	assert.Equal(t, int64(42), data.CustomerID)
}

func TestDecodeEnvelopeRejectionOnErrorStatus(t *testing.T) {
	// Duplicate-resource rejections arrive as parseable envelopes on
	// non-2xx statuses.
	env, err := gateway.DecodeEnvelope(gateway.Reply{
		Status: http.StatusBadRequest,
		Body:   []byte(`{"isSuccess":false,"responseText":"Payment link already exists","responseCode":3413}`),
	})
	require.NoError(t, err)

	rejection := env.Err()
	require.Error(t, rejection)
	assert.True(t, gateway.IsResourceExists(rejection))
	assert.True(t, gateway.IsRemoteRejection(rejection))

	var remote *gateway.RemoteError
	require.ErrorAs(t, rejection, &remote)
	assert.Equal(t, gateway.CodeResourceExists, remote.Code)
	assert.Contains(t, remote.Error(), "already exists")
}

func TestDecodeEnvelopeUnparseableBody(t *testing.T) {
	_, err := gateway.DecodeEnvelope(gateway.Reply{
		Status: http.StatusBadGateway,
		Body:   []byte("upstream unavailable"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.False(t, gateway.IsRemoteRejection(err))
}

func TestTransportErrorIsNotARemoteRejection(t *testing.T) {
	err := errors.New("dial tcp: connection refused")
	assert.False(t, gateway.IsRemoteRejection(err))
	assert.False(t, gateway.IsResourceExists(err))
}

func TestChargeResponseApproved(t *testing.T) {
	resp := gateway.ChargeResponse{Code: gateway.ChargeApprovedCode}
	assert.True(t, resp.Approved())

	resp.Code = "D0005"
	assert.False(t, resp.Approved())
}

func TestChargeResponseDeclineMessage(t *testing.T) {
	resp := gateway.ChargeResponse{Explanation: "Insufficient funds", Reason: "NSF"}
	assert.Equal(t, "Insufficient funds", resp.DeclineMessage())

	resp.Explanation = ""
	assert.Equal(t, "NSF", resp.DeclineMessage())

	resp.Reason = ""
	assert.Equal(t, "payment processing failed", resp.DeclineMessage())
}

func TestDollarsCentsRoundTrip(t *testing.T) {
	assert.InDelta(t, 123.45, gateway.Dollars(12345), 1e-9)
	assert.Equal(t, int64(12345), gateway.ToCents(123.45))
	assert.Equal(t, int64(0), gateway.ToCents(0))
	// Rounds to the nearest cent instead of truncating.
	assert.Equal(t, int64(10), gateway.ToCents(0.1+0.0000001))
}
