package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
	"github.com/Cogwheel-Validator/spectra-settler/settler/models"
)

func newBuyTicketCommand(opts *rootOptions) *cobra.Command {
	req := &models.BuyTicketRequest{}

	cmd := &cobra.Command{
		Use:   "buy-ticket",
		Short: "Compose the swap, refund and ticket purchase for a sender",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposer(cmd, opts, func(ctx context.Context, c composer) (any, error) {
				return c.BuyTicket(ctx, req)
			})
		},
	}

	cmd.Flags().StringVar(&req.Sender, "sender", "", "address paying for the ticket")
	cmd.Flags().StringVar(&req.Amount, "amount", "", "native amount offered")
	_ = cmd.MarkFlagRequired("sender")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

type swapFlags struct {
	sender      string
	offerNative string
	offerToken  string
	askNative   string
	askToken    string
	amount      string
	minReceive  string
	to          string
	half        bool
}

// request builds a single hop swap from the flags
func (f *swapFlags) request(cmd *cobra.Command) (*models.BuildSwapRequest, error) {
	offer, err := assetFromFlags(f.offerNative, f.offerToken)
	if err != nil {
		return nil, fmt.Errorf("offer asset: %w", err)
	}
	ask, err := assetFromFlags(f.askNative, f.askToken)
	if err != nil {
		return nil, fmt.Errorf("ask asset: %w", err)
	}

	req := &models.BuildSwapRequest{
		Sender:     f.sender,
		Operations: []contract.SwapOperation{contract.NewOraiSwapOperation(offer, ask)},
	}
	if f.amount != "" {
		req.Amount = &f.amount
	}
	if f.minReceive != "" {
		req.MinimumReceive = &f.minReceive
	}
	if f.to != "" {
		req.To = &f.to
	}
	if cmd.Flags().Changed("half") {
		req.Half = &f.half
	}
	return req, nil
}

func assetFromFlags(native, token string) (contract.AssetInfo, error) {
	switch {
	case native != "" && token != "":
		return contract.AssetInfo{}, fmt.Errorf("set either a native denom or a token contract, not both")
	case native != "":
		return contract.NewNativeAssetInfo(native), nil
	case token != "":
		return contract.NewTokenAssetInfo(token), nil
	default:
		return contract.AssetInfo{}, fmt.Errorf("a native denom or a token contract is required")
	}
}

func newSwapCommand(opts *rootOptions) *cobra.Command {
	flags := &swapFlags{}

	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Compose a router swap executed by the settlement contract",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(cmd)
			if err != nil {
				return err
			}
			return runComposer(cmd, opts, func(ctx context.Context, c composer) (any, error) {
				return c.BuildSwap(ctx, req)
			})
		},
	}

	cmd.Flags().StringVar(&flags.sender, "sender", "", "address the swap is composed for")
	cmd.Flags().StringVar(&flags.offerNative, "offer-native", "", "offered native denom")
	cmd.Flags().StringVar(&flags.offerToken, "offer-token", "", "offered cw20 token contract")
	cmd.Flags().StringVar(&flags.askNative, "ask-native", "", "asked native denom")
	cmd.Flags().StringVar(&flags.askToken, "ask-token", "", "asked cw20 token contract")
	cmd.Flags().StringVar(&flags.amount, "amount", "", "offered amount, the queried balance when empty")
	cmd.Flags().StringVar(&flags.minReceive, "min-receive", "", "minimum router output")
	cmd.Flags().StringVar(&flags.to, "to", "", "recipient of the router output")
	cmd.Flags().BoolVar(&flags.half, "half", false, "offer half of the queried balance")
	_ = cmd.MarkFlagRequired("sender")
	cmd.MarkFlagsMutuallyExclusive("offer-native", "offer-token")
	cmd.MarkFlagsMutuallyExclusive("ask-native", "ask-token")

	return cmd
}

func newConfigCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the settlement contract config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposer(cmd, opts, func(ctx context.Context, c composer) (any, error) {
				return c.GetConfig(ctx)
			})
		},
	}
}

func newPriceCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "price",
		Short: "Print the live ticket price of the lottery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComposer(cmd, opts, func(ctx context.Context, c composer) (any, error) {
				return c.GetTicketPrice(ctx)
			})
		},
	}
}
