// Package vault reads dynamic credentials from HashiCorp Vault. It is the
// only component that performs network I/O before the output is written.
package vault

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	vaultapi "github.com/hashicorp/vault/api"
	"k8s.io/klog/v2"

	"github.com/fitbeard/vault-kube-token/internal/errs"
	"github.com/fitbeard/vault-kube-token/internal/token"
)

// Data keys the Vault secrets engines return.
const (
	awsAccessKeyField     = "access_key"
	awsSecretKeyField     = "secret_key"
	awsSecurityTokenField = "security_token"

	gcpTokenField  = "token"
	gcpExpiryField = "expires_at_seconds"
)

// tokenHelperFile mimics the Vault CLI default token helper.
const tokenHelperFile = ".vault-token"

// Config carries the connection settings for one client. Empty fields fall
// back to the VAULT_ADDR / VAULT_CACERT / VAULT_TOKEN environment variables,
// then to the token helper file.
type Config struct {
	Address   string
	Token     string
	TokenFile string
	CACert    string
}

// Client wraps a Vault API client scoped to the reads this tool performs.
type Client struct {
	api *vaultapi.Client
}

// NewClient builds a Vault client from cfg. Address and CA certificate come
// from the config when set, otherwise from the environment via the API
// library's defaults.
func NewClient(cfg Config, userAgent string) (*Client, error) {
	apiCfg := vaultapi.DefaultConfig()
	if apiCfg.Error != nil {
		return nil, errs.Configuration("reading Vault environment configuration: %v", apiCfg.Error)
	}
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	if cfg.CACert != "" {
		if err := apiCfg.ConfigureTLS(&vaultapi.TLSConfig{CACert: cfg.CACert}); err != nil {
			return nil, errs.Configuration("configuring Vault CA certificate: %v", err)
		}
	}

	client, err := vaultapi.NewClient(apiCfg)
	if err != nil {
		return nil, errs.Configuration("creating Vault client: %v", err)
	}
	client.SetCloneHeaders(true)
	if userAgent != "" {
		client.AddHeader("User-Agent", userAgent)
	}

	tok, err := resolveToken(cfg, client.Token())
	if err != nil {
		return nil, err
	}
	if tok == "" {
		return nil, errs.Configuration("no Vault token found: use --vault-token, --vault-token-file, VAULT_TOKEN or ~/%s", tokenHelperFile)
	}
	client.SetToken(tok)

	klog.V(1).InfoS("configured Vault client", "address", client.Address())
	return &Client{api: client}, nil
}

// resolveToken picks the first available token source: the token file flag,
// the token flag, the environment token already on the client, then the
// Vault CLI helper file in the home directory.
func resolveToken(cfg Config, envToken string) (string, error) {
	if cfg.TokenFile != "" {
		tok, err := readTokenFile(cfg.TokenFile)
		if err != nil {
			return "", errs.Configuration("reading Vault token file: %v", err)
		}
		return tok, nil
	}
	if cfg.Token != "" {
		return cfg.Token, nil
	}
	if envToken != "" {
		return envToken, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}
	helper := filepath.Join(home, tokenHelperFile)
	klog.V(1).InfoS("trying Vault token helper", "path", helper)
	tok, err := readTokenFile(helper)
	if err != nil {
		// Helper file is optional.
		return "", nil
	}
	return tok, nil
}

func readTokenFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// ReadAWSCredentials generates temporary AWS credentials from the AWS secrets
// engine at path, which must look like <mount>/creds/<role>. A non-zero ttl
// is forwarded to the engine as the requested lease TTL.
func (c *Client) ReadAWSCredentials(path string, ttl time.Duration) (aws.Credentials, error) {
	if err := validateAWSPath(path); err != nil {
		return aws.Credentials{}, err
	}

	var params map[string][]string
	if ttl > 0 {
		params = map[string][]string{"ttl": {ttl.String()}}
	}

	klog.V(1).InfoS("reading AWS credentials from Vault", "path", path, "ttl", ttl)
	secret, err := c.api.Logical().ReadWithData(path, params)
	if err != nil {
		return aws.Credentials{}, errs.Credential("reading AWS credentials from Vault: %v", err)
	}
	if secret == nil || secret.Data == nil {
		return aws.Credentials{}, errs.Credential("no secret found at %q", path)
	}

	creds := aws.Credentials{
		AccessKeyID:     stringField(secret.Data, awsAccessKeyField),
		SecretAccessKey: stringField(secret.Data, awsSecretKeyField),
		SessionToken:    stringField(secret.Data, awsSecurityTokenField),
		Source:          "vault",
	}
	if creds.AccessKeyID == "" {
		return aws.Credentials{}, errs.Credential("secret at %q has no %s", path, awsAccessKeyField)
	}
	if creds.SecretAccessKey == "" {
		return aws.Credentials{}, errs.Credential("secret at %q has no %s", path, awsSecretKeyField)
	}
	if creds.SessionToken != "" && secret.LeaseDuration > 0 {
		creds.CanExpire = true
		creds.Expires = time.Now().Add(time.Duration(secret.LeaseDuration) * time.Second).UTC()
	}

	klog.V(1).InfoS("received AWS credentials",
		"accessKeyID", creds.AccessKeyID, "leaseDuration", secret.LeaseDuration)
	return creds, nil
}

// ReadGCPToken reads an OAuth access token from the GCP secrets engine at
// path and passes it through untransformed.
func (c *Client) ReadGCPToken(path string) (token.AccessToken, error) {
	klog.V(1).InfoS("reading GCP access token from Vault", "path", path)
	secret, err := c.api.Logical().Read(path)
	if err != nil {
		return token.AccessToken{}, errs.Credential("reading GCP token from Vault: %v", err)
	}
	if secret == nil || secret.Data == nil {
		return token.AccessToken{}, errs.Credential("no secret found at %q", path)
	}

	tok := stringField(secret.Data, gcpTokenField)
	if tok == "" {
		return token.AccessToken{}, errs.Credential("secret at %q has no %s", path, gcpTokenField)
	}
	expiry, err := parseExpiry(secret.Data[gcpExpiryField])
	if err != nil {
		return token.AccessToken{}, errs.Credential("secret at %q has an invalid %s: %v", path, gcpExpiryField, err)
	}

	return token.NewAccessToken(tok, expiry), nil
}

// validateAWSPath enforces the <mount>/creds/<role> shape so that a typo'd
// path fails before any lease is created.
func validateAWSPath(path string) error {
	parts := strings.Split(path, "/")
	if len(parts) != 3 || parts[1] != "creds" || parts[0] == "" || parts[2] == "" {
		return errs.Configuration("invalid AWS credentials path %q: expected <mount>/creds/<role>", path)
	}
	return nil
}

// parseExpiry accepts the engine's unix-seconds form as well as an RFC 3339
// string.
func parseExpiry(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case json.Number:
		seconds, err := v.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(seconds, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, err
		}
		return t.UTC(), nil
	case nil:
		return time.Time{}, fmt.Errorf("field is missing")
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", raw)
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}
