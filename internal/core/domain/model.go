package domain

import "github.com/shopspring/decimal"

// Model is a chat model offered on the /v1 API.
type Model struct {
	ID          string
	OwnedBy     string
	PricePer1K  decimal.Decimal
	Description string
}

// DefaultModelID is used when a request names an unknown model.
const DefaultModelID = "deepseek-chat"

// Catalog lists the models served by the platform.
var Catalog = []Model{
	{ID: "deepseek-chat", OwnedBy: "deepseek", PricePer1K: decimal.RequireFromString("0.001"), Description: "General purpose chat model"},
	{ID: "deepseek-coder", OwnedBy: "deepseek", PricePer1K: decimal.RequireFromString("0.002"), Description: "Code generation model"},
	{ID: "deepseek-reasoner", OwnedBy: "deepseek", PricePer1K: decimal.RequireFromString("0.003"), Description: "Multi-step reasoning model"},
}

// LookupModel returns the catalog entry for id, falling back to the default model.
func LookupModel(id string) Model {
	for _, m := range Catalog {
		if m.ID == id {
			return m
		}
	}
	return Catalog[0]
}
