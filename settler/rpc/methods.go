package rpc

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/Cogwheel-Validator/spectra-settler/settler/contract"
	"github.com/Cogwheel-Validator/spectra-settler/settler/models"
	"github.com/Cogwheel-Validator/spectra-settler/settler/service"
)

const (
	// SettlerServiceName is the fully-qualified name of the settler service
	SettlerServiceName = "settler.v1.SettlerService"

	BuyTicketProcedure      = "/" + SettlerServiceName + "/BuyTicket"
	BuildSwapProcedure      = "/" + SettlerServiceName + "/BuildSwap"
	GetConfigProcedure      = "/" + SettlerServiceName + "/GetConfig"
	GetTicketPriceProcedure = "/" + SettlerServiceName + "/GetTicketPrice"
)

// SettlerServer implements the settler Connect handlers
type SettlerServer struct {
	settler *service.Settler
}

// NewSettlerServer creates a new SettlerServer
func NewSettlerServer(settler *service.Settler) *SettlerServer {
	return &SettlerServer{settler: settler}
}

// NewSettlerServiceHandler builds the handlers of every procedure, keyed by path
func NewSettlerServiceHandler(s *SettlerServer, opts ...connect.HandlerOption) map[string]http.Handler {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)
	return map[string]http.Handler{
		BuyTicketProcedure:      connect.NewUnaryHandler(BuyTicketProcedure, s.BuyTicket, opts...),
		BuildSwapProcedure:      connect.NewUnaryHandler(BuildSwapProcedure, s.BuildSwap, opts...),
		GetConfigProcedure:      connect.NewUnaryHandler(GetConfigProcedure, s.GetConfig, opts...),
		GetTicketPriceProcedure: connect.NewUnaryHandler(GetTicketPriceProcedure, s.GetTicketPrice, opts...),
	}
}

// BuyTicket composes a swap and ticket purchase.
//
// Returns:
// - invalid_argument: bad sender or amount
// - failed_precondition: amount below the ticket price
// - unavailable: chain queries failed
func (s *SettlerServer) BuyTicket(
	ctx context.Context,
	req *connect.Request[models.BuyTicketRequest],
) (*connect.Response[models.BuyTicketResponse], error) {
	amount, err := contract.ParseUint128(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount: %w", err))
	}

	result, err := s.settler.BuyTicket(ctx, req.Msg.Sender, amount)
	if err != nil {
		return nil, toConnectError(err)
	}

	refund := contract.ZeroUint128()
	for _, msg := range result.Response.Messages {
		if msg.Bank != nil && msg.Bank.Send != nil && len(msg.Bank.Send.Amount) > 0 {
			refund = msg.Bank.Send.Amount[0].Amount
		}
	}

	return connect.NewResponse(&models.BuyTicketResponse{
		Messages:   result.Response.Messages,
		Attributes: result.Response.Attributes,
		Refund:     refund.String(),
	}), nil
}

// BuildSwap composes a router swap with the settlement contract as executor
func (s *SettlerServer) BuildSwap(
	ctx context.Context,
	req *connect.Request[models.BuildSwapRequest],
) (*connect.Response[models.BuildSwapResponse], error) {
	swapReq := service.SwapRequest{
		Sender:     req.Msg.Sender,
		Operations: req.Msg.Operations,
		To:         req.Msg.To,
		Half:       req.Msg.Half,
	}

	var err error
	if swapReq.Amount, err = parseOptionalUint128(req.Msg.Amount); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid amount: %w", err))
	}
	if swapReq.MinimumReceive, err = parseOptionalUint128(req.Msg.MinimumReceive); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid minimum_receive: %w", err))
	}

	msgs, err := s.settler.BuildSwap(ctx, swapReq)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&models.BuildSwapResponse{Messages: msgs}), nil
}

func (s *SettlerServer) GetConfig(
	ctx context.Context,
	req *connect.Request[models.GetConfigRequest],
) (*connect.Response[models.GetConfigResponse], error) {
	cfg, err := s.settler.Config(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	deployment := s.settler.Deployment()
	return connect.NewResponse(&models.GetConfigResponse{
		Owner:           cfg.Owner,
		LotteryContract: cfg.LotteryContract,
		OraiswapRouter:  cfg.OraiswapRouter,
		ContractAddress: deployment.ContractAddress,
		ChainID:         deployment.ChainID,
		NativeDenom:     deployment.NativeDenom,
		MinimumReceive:  deployment.MinimumReceive,
	}), nil
}

func (s *SettlerServer) GetTicketPrice(
	ctx context.Context,
	req *connect.Request[models.GetTicketPriceRequest],
) (*connect.Response[models.GetTicketPriceResponse], error) {
	price, err := s.settler.TicketPrice(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&models.GetTicketPriceResponse{Price: price}), nil
}

func parseOptionalUint128(s *string) (*contract.Uint128, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	v, err := contract.ParseUint128(*s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// toConnectError maps contract error kinds to Connect codes
func toConnectError(err error) error {
	switch contract.KindOf(err) {
	case contract.ErrorKindInvalidInput:
		return connect.NewError(connect.CodeInvalidArgument, err)
	case contract.ErrorKindInvalidFunds:
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case contract.ErrorKindUnauthorized:
		return connect.NewError(connect.CodePermissionDenied, err)
	default:
		return connect.NewError(connect.CodeUnavailable, err)
	}
}
