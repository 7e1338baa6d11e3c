package main

import (
	"github.com/spf13/cobra"

	"github.com/Cogwheel-Validator/spectra-settler/settler/config"
)

func newFetchDeploymentCommand(opts *rootOptions) *cobra.Command {
	var src, dst string

	cmd := &cobra.Command{
		Use:   "fetch-deployment",
		Short: "Download a deployment file and check that it loads",
		Long: `Download a deployment file from a local path, an http(s) url or a git source
such as github.com/org/repo//deployments/mainnet.toml, then validate it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dst == "" {
				dst = opts.ConfigDeployment
			}
			if err := config.FetchDeployment(cmd.Context(), src, dst, opts.Timeout); err != nil {
				return err
			}

			deployment, err := config.NewDefaultDeploymentLoader().LoadFromFile(dst)
			if err != nil {
				return err
			}
			log.Info().
				Str("dst", dst).
				Str("chain_id", deployment.ChainID).
				Str("contract", deployment.ContractAddress).
				Msg("Deployment fetched")
			return printJSON(cmd.OutOrStdout(), deployment)
		},
	}

	cmd.Flags().StringVar(&src, "src", "", "deployment source")
	cmd.Flags().StringVar(&dst, "dst", "", "destination file, --config-deployment when empty")
	_ = cmd.MarkFlagRequired("src")

	return cmd
}
