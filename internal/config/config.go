// Package config resolves the invocation configuration from flags,
// environment variables and the optional profile file, in that precedence
// order.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/ini.v1"
	"k8s.io/klog/v2"

	"github.com/fitbeard/vault-kube-token/internal/errs"
)

// Environment variables honored as flag fallbacks.
const (
	EnvVaultAddress = "VAULT_ADDR"
	EnvVaultToken   = "VAULT_TOKEN"
	EnvVaultCACert  = "VAULT_CACERT"
)

// profileFile is the optional ini file with per-profile defaults, relative to
// the user config directory.
var profileFile = filepath.Join("vault-kube-token", "config")

// ParseType validates the positional credential type argument.
func ParseType(s string) (Type, error) {
	switch Type(s) {
	case TypeGKE, TypeEKS, TypeGCP:
		return Type(s), nil
	default:
		return "", errs.Configuration("unknown credential type %q: expected gke, eks or gcp", s)
	}
}

// ApplyEnv fills empty Vault connection fields from the environment. lookup
// is os.LookupEnv outside of tests.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if c.VaultAddress == "" {
		c.VaultAddress, _ = lookup(EnvVaultAddress)
	}
	if c.VaultToken == "" && c.VaultTokenFile == "" {
		c.VaultToken, _ = lookup(EnvVaultToken)
	}
	if c.VaultCACert == "" {
		c.VaultCACert, _ = lookup(EnvVaultCACert)
	}
}

// ApplyProfile merges defaults from the named profile section into empty
// fields of c.
func (c *Config) ApplyProfile(p Profile) {
	if c.VaultAddress == "" {
		c.VaultAddress = p.VaultAddress
	}
	if c.VaultCACert == "" {
		c.VaultCACert = p.VaultCACert
	}
	if c.EKSCluster == "" {
		c.EKSCluster = p.EKSCluster
	}
	if c.EKSRegion == "" {
		c.EKSRegion = p.EKSRegion
	}
	if c.EKSRoleARN == "" {
		c.EKSRoleARN = p.EKSRoleARN
	}
	if c.Output == "" {
		c.Output = p.Output
	}
}

// Validate checks cross-field requirements after all merging is done.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeGKE:
		if c.Path == "" {
			return errs.Configuration("credential type gke requires a Vault path")
		}
	case TypeEKS:
		if c.Path == "" {
			return errs.Configuration("credential type eks requires a Vault path")
		}
		if c.EKSCluster == "" {
			return errs.Configuration("credential type eks requires --eks-cluster")
		}
	case TypeGCP:
		// No Vault path needed.
	default:
		return errs.Configuration("unknown credential type %q", c.Type)
	}
	return nil
}

// LoadProfile reads the named section from the profile file. A missing file
// is an error only when a profile was explicitly requested.
func LoadProfile(name string) (Profile, error) {
	return loadProfileFrom(profilePath(), name)
}

func loadProfileFrom(path, name string) (Profile, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Profile{}, errs.Configuration("loading profile file %q: %v", path, err)
	}
	section, err := file.GetSection(name)
	if err != nil {
		return Profile{}, errs.Configuration("profile %q not found in %q", name, path)
	}
	var p Profile
	if err := section.MapTo(&p); err != nil {
		return Profile{}, errs.Configuration("parsing profile %q: %v", name, err)
	}
	klog.V(1).InfoS("loaded profile", "profile", name, "path", path)
	return p, nil
}

func profilePath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, profileFile)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return profileFile
	}
	return filepath.Join(home, fmt.Sprintf(".%s", profileFile))
}
