package cli

import (
	"context"
	"io"
	"time"

	"golang.org/x/oauth2/google"
	"k8s.io/klog/v2"

	"github.com/fitbeard/vault-kube-token/internal/config"
	"github.com/fitbeard/vault-kube-token/internal/errs"
	"github.com/fitbeard/vault-kube-token/internal/output"
	"github.com/fitbeard/vault-kube-token/internal/sts"
	"github.com/fitbeard/vault-kube-token/internal/token"
	"github.com/fitbeard/vault-kube-token/internal/vault"
	"github.com/fitbeard/vault-kube-token/internal/version"
	"github.com/fitbeard/vault-kube-token/pkg/duration"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// fallbackGoogleExpiry is used when the Google token source reports no
// expiry.
const fallbackGoogleExpiry = 50 * time.Minute

// run resolves the configuration and executes the pipeline for the requested
// credential type. out is only ever written to on the success path.
func run(out io.Writer, deps deps, flags rootFlags, args []string) error {
	cfg, err := resolveConfig(deps, flags, args)
	if err != nil {
		return err
	}

	sink := output.NewSink(cfg.Output, out)

	switch cfg.Type {
	case config.TypeGKE:
		return runGKE(sink, deps, cfg)
	case config.TypeEKS:
		return runEKS(sink, deps, cfg)
	case config.TypeGCP:
		return runGCP(sink, deps)
	default:
		return errs.Configuration("unknown credential type %q", cfg.Type)
	}
}

// resolveConfig merges flags, the optional profile and the environment into
// a validated Config.
func resolveConfig(deps deps, flags rootFlags, args []string) (config.Config, error) {
	typ, err := config.ParseType(args[0])
	if err != nil {
		return config.Config{}, err
	}

	cfg := config.Config{
		Type:           typ,
		VaultAddress:   flags.vaultAddress,
		VaultToken:     flags.vaultToken,
		VaultTokenFile: flags.vaultTokenFile,
		VaultCACert:    flags.vaultCACert,
		Output:         flags.output,
		EKSCluster:     flags.eksCluster,
		EKSRegion:      flags.eksRegion,
		EKSRoleARN:     flags.eksRoleARN,
	}
	if len(args) == 2 {
		cfg.Path = args[1]
	}

	if flags.profile != "" {
		profile, err := deps.loadProfile(flags.profile)
		if err != nil {
			return config.Config{}, err
		}
		cfg.ApplyProfile(profile)
	}
	cfg.ApplyEnv(deps.lookupEnv)

	if flags.eksTTL != "" {
		ttl, err := duration.Parse(flags.eksTTL)
		if err != nil {
			return config.Config{}, errs.Configuration("invalid --eks-ttl: %v", err)
		}
		if err := duration.ValidateLease(ttl); err != nil {
			return config.Config{}, errs.Configuration("invalid --eks-ttl: %v", err)
		}
		cfg.EKSTTL = ttl
	}
	cfg.EKSExpiry = sts.DefaultPresignExpiry
	if flags.eksExpiry != "" {
		expiry, err := duration.Parse(flags.eksExpiry)
		if err != nil {
			return config.Config{}, errs.Configuration("invalid --eks-expiry: %v", err)
		}
		if err := duration.ValidatePresign(expiry); err != nil {
			return config.Config{}, errs.Configuration("invalid --eks-expiry: %v", err)
		}
		cfg.EKSExpiry = expiry
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func vaultConfigFrom(cfg config.Config) vault.Config {
	return vault.Config{
		Address:   cfg.VaultAddress,
		Token:     cfg.VaultToken,
		TokenFile: cfg.VaultTokenFile,
		CACert:    cfg.VaultCACert,
	}
}

// runGKE reads the GCP access token from Vault and passes it through.
func runGKE(sink output.Sink, deps deps, cfg config.Config) error {
	client, err := deps.newVault(vaultConfigFrom(cfg), version.GetUserAgent())
	if err != nil {
		return err
	}
	klog.V(1).InfoS("requesting GKE access token", "path", cfg.Path)
	tok, err := client.ReadGCPToken(cfg.Path)
	if err != nil {
		return err
	}
	return sink.Write(tok)
}

// runEKS fetches AWS credentials from Vault, presigns a GetCallerIdentity
// request with them and wraps the result in the ExecCredential envelope. The
// whole build/sign/encode pass uses a single clock reading.
func runEKS(sink output.Sink, deps deps, cfg config.Config) error {
	client, err := deps.newVault(vaultConfigFrom(cfg), version.GetUserAgent())
	if err != nil {
		return err
	}
	klog.V(1).InfoS("requesting AWS credentials", "path", cfg.Path)
	creds, err := client.ReadAWSCredentials(cfg.Path, cfg.EKSTTL)
	if err != nil {
		return err
	}

	req, err := sts.BuildRequest(sts.Params{
		Region:    cfg.EKSRegion,
		ClusterID: cfg.EKSCluster,
		RoleARN:   cfg.EKSRoleARN,
	}, deps.now())
	if err != nil {
		return err
	}
	presigned, err := sts.Presign(req, creds, cfg.EKSExpiry)
	if err != nil {
		return err
	}
	klog.V(2).InfoS("presigned STS request", "host", presigned.Host)

	return sink.Write(token.NewExecCredential(presigned))
}

// runGCP mints a token from Google application-default credentials, without
// Vault.
func runGCP(sink output.Sink, deps deps) error {
	klog.V(1).InfoS("using Google SDK authentication flow")
	tok, err := deps.googleToken()
	if err != nil {
		return err
	}
	return sink.Write(tok)
}

// googleAccessToken resolves application-default credentials and fetches a
// cloud-platform scoped access token.
func googleAccessToken() (token.AccessToken, error) {
	ctx := context.Background()
	source, err := google.DefaultTokenSource(ctx, cloudPlatformScope)
	if err != nil {
		return token.AccessToken{}, errs.Credential("resolving Google application-default credentials: %v", err)
	}
	tok, err := source.Token()
	if err != nil {
		return token.AccessToken{}, errs.Credential("fetching Google access token: %v", err)
	}
	expiry := tok.Expiry
	if expiry.IsZero() {
		expiry = time.Now().Add(fallbackGoogleExpiry)
	}
	return token.NewAccessToken(tok.AccessToken, expiry), nil
}
