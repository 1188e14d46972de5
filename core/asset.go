package core

import "github.com/fox-one/mixin-sdk-go/v2"

type (
	Asset struct {
		AssetID   string `json:"assetId,omitempty"`
		ChainID   string `json:"chainId,omitempty"`
		Symbol    string `json:"symbol,omitempty"`
		Name      string `json:"name,omitempty"`
		Precision int32  `json:"precision,omitempty"`
	}
)

func NewAssetFromMixin(asset *mixin.SafeAsset) *Asset {
	return &Asset{
		AssetID:   asset.AssetID,
		ChainID:   asset.ChainID,
		Symbol:    asset.Symbol,
		Name:      asset.Name,
		Precision: asset.Precision,
	}
}

