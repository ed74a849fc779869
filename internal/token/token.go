// Package token renders the two credential documents this tool emits: the
// Kubernetes ExecCredential envelope for EKS and the token/expiry pair for
// GKE kubeconfigs.
package token

import (
	"encoding/base64"
	"time"

	"github.com/fitbeard/vault-kube-token/internal/sts"
)

// Prefix identifies the EKS bearer token scheme. The API server strips it and
// base64url-decodes the remainder back into the presigned URL.
const Prefix = "k8s-aws-v1."

// ExecCredential is the client.authentication.k8s.io envelope kubectl parses
// from stdout. The types are declared here because the wire format pins the
// v1alpha1 group version.
type ExecCredential struct {
	Kind       string               `json:"kind"`
	APIVersion string               `json:"apiVersion"`
	Spec       struct{}             `json:"spec"`
	Status     ExecCredentialStatus `json:"status"`
}

// ExecCredentialStatus carries the bearer token. No expiry is reported: the
// API server derives its own validation window from the signed
// X-Amz-Expires parameter.
type ExecCredentialStatus struct {
	Token string `json:"token"`
}

// EncodeEKS serializes a presigned request into the bearer token string:
// the scheme prefix followed by the unpadded base64url form of the full URL.
// The URL is transcribed exactly as signed; any re-encoding here would break
// the server-side signature check.
func EncodeEKS(presigned sts.PresignedRequest) string {
	return Prefix + base64.RawURLEncoding.EncodeToString([]byte(presigned.URL()))
}

// NewExecCredential wraps a presigned request in the ExecCredential envelope.
func NewExecCredential(presigned sts.PresignedRequest) *ExecCredential {
	return &ExecCredential{
		Kind:       "ExecCredential",
		APIVersion: "client.authentication.k8s.io/v1alpha1",
		Status:     ExecCredentialStatus{Token: EncodeEKS(presigned)},
	}
}

// AccessToken is the GKE/GCP document: a bearer token and its expiry, passed
// through from the secret source without transformation.
type AccessToken struct {
	Expiry string `json:"token_expiry"`
	Token  string `json:"token"`
}

// NewAccessToken formats an access token with an RFC 3339 expiry at seconds
// precision.
func NewAccessToken(tok string, expiry time.Time) AccessToken {
	return AccessToken{
		Token:  tok,
		Expiry: expiry.UTC().Format(time.RFC3339),
	}
}
