package rpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/Cogwheel-Validator/spectra-settler/settler/models"
	"github.com/Cogwheel-Validator/spectra-settler/settler/service"
)

// SettlerClient calls a remote settler server
type SettlerClient struct {
	buyTicket      *connect.Client[models.BuyTicketRequest, models.BuyTicketResponse]
	buildSwap      *connect.Client[models.BuildSwapRequest, models.BuildSwapResponse]
	getConfig      *connect.Client[models.GetConfigRequest, models.GetConfigResponse]
	getTicketPrice *connect.Client[models.GetTicketPriceRequest, models.GetTicketPriceResponse]
}

// NewSettlerClient creates a client for the server at baseURL
func NewSettlerClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlerClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &SettlerClient{
		buyTicket: connect.NewClient[models.BuyTicketRequest, models.BuyTicketResponse](
			httpClient, baseURL+BuyTicketProcedure, opts...),
		buildSwap: connect.NewClient[models.BuildSwapRequest, models.BuildSwapResponse](
			httpClient, baseURL+BuildSwapProcedure, opts...),
		getConfig: connect.NewClient[models.GetConfigRequest, models.GetConfigResponse](
			httpClient, baseURL+GetConfigProcedure, opts...),
		getTicketPrice: connect.NewClient[models.GetTicketPriceRequest, models.GetTicketPriceResponse](
			httpClient, baseURL+GetTicketPriceProcedure, opts...),
	}
}

func (c *SettlerClient) BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.BuyTicketResponse, error) {
	resp, err := c.buyTicket.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *SettlerClient) BuildSwap(ctx context.Context, req *models.BuildSwapRequest) (*models.BuildSwapResponse, error) {
	resp, err := c.buildSwap.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *SettlerClient) GetConfig(ctx context.Context) (*models.GetConfigResponse, error) {
	resp, err := c.getConfig.CallUnary(ctx, connect.NewRequest(&models.GetConfigRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *SettlerClient) GetTicketPrice(ctx context.Context) (*models.GetTicketPriceResponse, error) {
	resp, err := c.getTicketPrice.CallUnary(ctx, connect.NewRequest(&models.GetTicketPriceRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

// LocalSettlerClient calls the handlers in-process, errors carry the same Connect codes
type LocalSettlerClient struct {
	server *SettlerServer
}

// NewLocalSettlerClient serves calls from settler without a network hop
func NewLocalSettlerClient(settler *service.Settler) *LocalSettlerClient {
	return &LocalSettlerClient{server: NewSettlerServer(settler)}
}

func (c *LocalSettlerClient) BuyTicket(ctx context.Context, req *models.BuyTicketRequest) (*models.BuyTicketResponse, error) {
	resp, err := c.server.BuyTicket(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *LocalSettlerClient) BuildSwap(ctx context.Context, req *models.BuildSwapRequest) (*models.BuildSwapResponse, error) {
	resp, err := c.server.BuildSwap(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *LocalSettlerClient) GetConfig(ctx context.Context) (*models.GetConfigResponse, error) {
	resp, err := c.server.GetConfig(ctx, connect.NewRequest(&models.GetConfigRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}

func (c *LocalSettlerClient) GetTicketPrice(ctx context.Context) (*models.GetTicketPriceResponse, error) {
	resp, err := c.server.GetTicketPrice(ctx, connect.NewRequest(&models.GetTicketPriceRequest{}))
	if err != nil {
		return nil, err
	}
	return resp.Msg, nil
}
