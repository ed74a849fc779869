// Package cli wires the credential pipelines behind the command-line surface.
package cli

import (
	goflag "flag"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/fitbeard/vault-kube-token/internal/config"
	"github.com/fitbeard/vault-kube-token/internal/token"
	"github.com/fitbeard/vault-kube-token/internal/vault"
	"github.com/fitbeard/vault-kube-token/internal/version"
)

// vaultReader is the slice of the Vault client the pipelines consume.
type vaultReader interface {
	ReadAWSCredentials(path string, ttl time.Duration) (aws.Credentials, error)
	ReadGCPToken(path string) (token.AccessToken, error)
}

// deps carries the process-boundary collaborators so tests can substitute
// them without touching the environment, the clock or the network.
type deps struct {
	lookupEnv   func(string) (string, bool)
	newVault    func(cfg vault.Config, userAgent string) (vaultReader, error)
	now         func() time.Time
	googleToken func() (token.AccessToken, error)
	loadProfile func(name string) (config.Profile, error)
}

func realDeps() deps {
	return deps{
		lookupEnv: os.LookupEnv,
		newVault: func(cfg vault.Config, userAgent string) (vaultReader, error) {
			return vault.NewClient(cfg, userAgent)
		},
		now:         time.Now,
		googleToken: googleAccessToken,
		loadProfile: config.LoadProfile,
	}
}

type rootFlags struct {
	vaultAddress   string
	vaultToken     string
	vaultTokenFile string
	vaultCACert    string
	output         string
	profile        string
	eksCluster     string
	eksRegion      string
	eksRoleARN     string
	eksTTL         string
	eksExpiry      string
}

// New returns the fully assembled root command.
func New() *cobra.Command {
	return newRootCommand(realDeps())
}

func newRootCommand(deps deps) *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "vault-kube-token <type> <path>",
		Short: "Read access tokens from Vault to authenticate with Kubernetes",
		Long: `Read access tokens from Vault to authenticate with Kubernetes.

<type> is one of gke, eks or gcp. <path> is the Vault secret path to read
(omitted for gcp, which uses Google application-default credentials).

The resulting credential document is written to stdout (or --output) in the
format the target cluster's kubectl exec plugin configuration expects.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), deps, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.vaultAddress, "vault-address", "",
		"Vault address, including scheme and port (env "+config.EnvVaultAddress+")")
	cmd.Flags().StringVar(&flags.vaultToken, "vault-token", "",
		"Vault token (env "+config.EnvVaultToken+")")
	cmd.Flags().StringVar(&flags.vaultTokenFile, "vault-token-file", "",
		"Path to a file containing the Vault token")
	cmd.Flags().StringVar(&flags.vaultCACert, "vault-ca-cert", "",
		"Path to a PEM encoded CA certificate for Vault (env "+config.EnvVaultCACert+")")
	cmd.Flags().StringVar(&flags.output, "output", "",
		"Path to write the credential document to; defaults to stdout ('-')")
	cmd.Flags().StringVar(&flags.profile, "profile", "",
		"Named profile from the configuration file supplying flag defaults")
	cmd.Flags().StringVar(&flags.eksCluster, "eks-cluster", "",
		"Name of the EKS cluster; required if type is eks")
	cmd.Flags().StringVar(&flags.eksRegion, "eks-region", "",
		"AWS region; defaults to the global STS endpoint")
	cmd.Flags().StringVar(&flags.eksRoleARN, "eks-role-arn", "",
		"Role ARN to embed as a signed query parameter of the presigned URL")
	cmd.Flags().StringVar(&flags.eksTTL, "eks-ttl", "",
		"Lease TTL requested from the Vault AWS secrets engine (e.g. '1h')")
	cmd.Flags().StringVar(&flags.eksExpiry, "eks-expiry", "",
		"Validity window of the presigned URL (e.g. '60'); defaults to 60 seconds")
	cmd.MarkFlagsMutuallyExclusive("vault-token", "vault-token-file")

	addVerbosityFlag(cmd)
	cmd.AddCommand(newVersionCommand())
	return cmd
}

// addVerbosityFlag exposes klog's -v so diagnostics can be turned up without
// dragging the whole klog flag surface into the help text.
func addVerbosityFlag(cmd *cobra.Command) {
	var klogFlags goflag.FlagSet
	klog.InitFlags(&klogFlags)
	if f := klogFlags.Lookup("v"); f != nil {
		cmd.PersistentFlags().AddGoFlag(f)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := cmd.OutOrStdout().Write([]byte(version.String()))
			return err
		},
	}
}
