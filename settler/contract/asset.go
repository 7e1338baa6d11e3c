package contract

import "fmt"

// AssetInfoKind defines the kind of an asset descriptor
type AssetInfoKind string

const (
	AssetInfoKindNativeToken AssetInfoKind = "native_token"
	AssetInfoKindToken       AssetInfoKind = "token"
)

// AssetInfo identifies an asset as either a native denom or a cw20 token contract (union type).
// Exactly one field must be set, use Kind to branch over it.
type AssetInfo struct {
	NativeToken *NativeToken `json:"native_token,omitempty"`
	Token       *Token       `json:"token,omitempty"`
}

// NativeToken is a bank denom such as "orai"
type NativeToken struct {
	Denom string `json:"denom"`
}

// Token is a cw20 token contract
type Token struct {
	ContractAddr string `json:"contract_addr"`
}

// NewNativeAssetInfo creates a native token descriptor
func NewNativeAssetInfo(denom string) AssetInfo {
	return AssetInfo{NativeToken: &NativeToken{Denom: denom}}
}

// NewTokenAssetInfo creates a cw20 token descriptor
func NewTokenAssetInfo(contractAddr string) AssetInfo {
	return AssetInfo{Token: &Token{ContractAddr: contractAddr}}
}

// Kind returns the active variant and fails unless exactly one is set
func (a AssetInfo) Kind() (AssetInfoKind, error) {
	switch {
	case a.NativeToken != nil && a.Token == nil:
		if a.NativeToken.Denom == "" {
			return "", fmt.Errorf("native token denom is empty")
		}
		return AssetInfoKindNativeToken, nil
	case a.Token != nil && a.NativeToken == nil:
		if a.Token.ContractAddr == "" {
			return "", fmt.Errorf("token contract address is empty")
		}
		return AssetInfoKindToken, nil
	default:
		return "", fmt.Errorf("asset info must hold exactly one of native_token or token")
	}
}

func (a AssetInfo) String() string {
	switch {
	case a.NativeToken != nil:
		return a.NativeToken.Denom
	case a.Token != nil:
		return a.Token.ContractAddr
	default:
		return "<empty asset>"
	}
}

// SwapOperation is a single exchange leg understood by the router (union type).
// The router supports more venues, only the native oraiswap pools are used here.
type SwapOperation struct {
	OraiSwap *OraiSwapOperation `json:"orai_swap,omitempty"`
}

// OraiSwapOperation swaps the offer asset for the ask asset in an oraiswap pair
type OraiSwapOperation struct {
	OfferAssetInfo AssetInfo `json:"offer_asset_info"`
	AskAssetInfo   AssetInfo `json:"ask_asset_info"`
}

// NewOraiSwapOperation creates an oraiswap leg
func NewOraiSwapOperation(offer, ask AssetInfo) SwapOperation {
	return SwapOperation{
		OraiSwap: &OraiSwapOperation{
			OfferAssetInfo: offer,
			AskAssetInfo:   ask,
		},
	}
}

// OfferAssetInfo returns the asset offered by this leg
func (o SwapOperation) OfferAssetInfo() (AssetInfo, error) {
	if o.OraiSwap == nil {
		return AssetInfo{}, fmt.Errorf("swap operation has no variant set")
	}
	return o.OraiSwap.OfferAssetInfo, nil
}

// AskAssetInfo returns the asset received from this leg
func (o SwapOperation) AskAssetInfo() (AssetInfo, error) {
	if o.OraiSwap == nil {
		return AssetInfo{}, fmt.Errorf("swap operation has no variant set")
	}
	return o.OraiSwap.AskAssetInfo, nil
}
