package token

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitbeard/vault-kube-token/internal/sts"
)

func testPresigned() sts.PresignedRequest {
	return sts.PresignedRequest{
		Method:   "GET",
		Host:     "sts.us-east-1.amazonaws.com",
		Path:     "/",
		RawQuery: "Action=GetCallerIdentity&Version=2011-06-15&X-Amz-Signature=abc",
		SignedHeaders: []sts.Header{
			{Name: "host", Value: "sts.us-east-1.amazonaws.com"},
			{Name: "x-k8s-aws-id", Value: "my-cluster"},
		},
	}
}

func TestEncodeEKSRoundTrips(t *testing.T) {
	presigned := testPresigned()
	tok := EncodeEKS(presigned)

	require.True(t, strings.HasPrefix(tok, "k8s-aws-v1."))
	assert.NotContains(t, tok, "=", "token must be unpadded")

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(tok, Prefix))
	require.NoError(t, err)
	assert.Equal(t, presigned.URL(), string(decoded))

	parsed, err := url.Parse(string(decoded))
	require.NoError(t, err)
	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "sts.us-east-1.amazonaws.com", parsed.Host)
	assert.Equal(t, "GetCallerIdentity", parsed.Query().Get("Action"))
}

func TestNewExecCredentialEnvelope(t *testing.T) {
	cred := NewExecCredential(testPresigned())

	raw, err := json.Marshal(cred)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `"ExecCredential"`, string(doc["kind"]))
	assert.JSONEq(t, `"client.authentication.k8s.io/v1alpha1"`, string(doc["apiVersion"]))
	assert.JSONEq(t, `{}`, string(doc["spec"]))

	var status struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(doc["status"], &status))
	assert.Equal(t, EncodeEKS(testPresigned()), status.Token)
}

func TestNewAccessToken(t *testing.T) {
	expiry := time.Date(2019, 3, 1, 8, 9, 32, 500, time.UTC)
	tok := NewAccessToken("ya29.c.ABC", expiry)

	assert.Equal(t, "ya29.c.ABC", tok.Token)
	assert.Equal(t, "2019-03-01T08:09:32Z", tok.Expiry)

	raw, err := json.Marshal(tok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"token_expiry":"2019-03-01T08:09:32Z","token":"ya29.c.ABC"}`, string(raw))
}
