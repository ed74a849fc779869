package config

import "time"

// Type selects which credential document is produced.
type Type string

const (
	// TypeGKE reads a GCP access token from Vault and passes it through.
	TypeGKE Type = "gke"
	// TypeEKS converts Vault-issued AWS credentials into a presigned bearer
	// token.
	TypeEKS Type = "eks"
	// TypeGCP mints a token from Google application-default credentials
	// without touching Vault.
	TypeGCP Type = "gcp"
)

// Config is the fully resolved configuration for one invocation, after flag,
// environment and profile merging.
type Config struct {
	Type Type
	// Path is the Vault secret path. Unused for TypeGCP.
	Path string

	VaultAddress   string
	VaultToken     string
	VaultTokenFile string
	VaultCACert    string

	// Output is the sink path; "-" means stdout.
	Output string

	EKSCluster string
	EKSRegion  string
	EKSRoleARN string
	// EKSTTL is forwarded to the Vault AWS engine as the credential lease TTL.
	EKSTTL time.Duration
	// EKSExpiry bounds the presigned URL validity window.
	EKSExpiry time.Duration
}

// Profile is one section of the optional profile file. It only supplies
// defaults; explicit flags and environment variables win.
type Profile struct {
	VaultAddress string `ini:"vault_address"`
	VaultCACert  string `ini:"vault_ca_cert"`
	EKSCluster   string `ini:"eks_cluster"`
	EKSRegion    string `ini:"eks_region"`
	EKSRoleARN   string `ini:"eks_role_arn"`
	Output       string `ini:"output"`
}
