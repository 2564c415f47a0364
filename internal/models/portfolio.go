// Package models defines data structures for Thrive
package models

import "strings"

// AssetType classifies a holding
type AssetType string

const (
	AssetTypeStock      AssetType = "STOCK"
	AssetTypeETF        AssetType = "ETF"
	AssetTypeMutualFund AssetType = "MUTUAL_FUND"
	AssetTypeCrypto     AssetType = "CRYPTO"
	AssetTypeUnknown    AssetType = "UNKNOWN"
)

// ParseAssetType maps a free-form asset type string to an AssetType.
// Unrecognized values (including FOREX) map to UNKNOWN.
func ParseAssetType(s string) AssetType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "STOCK", "EQUITY", "COMMON STOCK":
		return AssetTypeStock
	case "ETF":
		return AssetTypeETF
	case "MUTUAL_FUND", "MUTUALFUND", "FUND":
		return AssetTypeMutualFund
	case "CRYPTO", "CRYPTOCURRENCY":
		return AssetTypeCrypto
	default:
		return AssetTypeUnknown
	}
}

// ChangeAction is a simulated trade direction
type ChangeAction string

const (
	ActionBuy  ChangeAction = "BUY"
	ActionSell ChangeAction = "SELL"
)

// Holding represents a single portfolio position
type Holding struct {
	Symbol       string    `json:"symbol"`
	Name         string    `json:"name,omitempty"`
	Quantity     float64   `json:"quantity"`
	BuyPrice     float64   `json:"buyPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	CurrentValue float64   `json:"currentValue"`
	AssetType    AssetType `json:"assetType,omitempty"`
}

// Value returns the holding's market value, deriving it from quantity and
// current price when CurrentValue was not supplied directly.
func (h Holding) Value() float64 {
	if h.CurrentValue > 0 {
		return h.CurrentValue
	}
	if h.Quantity > 0 && h.CurrentPrice > 0 {
		return h.Quantity * h.CurrentPrice
	}
	return 0
}

// Type returns the holding's asset type, defaulting to UNKNOWN when unset.
func (h Holding) Type() AssetType {
	if h.AssetType == "" {
		return AssetTypeUnknown
	}
	return h.AssetType
}

// Change is one simulated BUY or SELL action against a ledger
type Change struct {
	Symbol    string       `json:"symbol"`
	Action    ChangeAction `json:"action"`
	Quantity  float64      `json:"quantity"`
	Price     float64      `json:"price"`
	Name      string       `json:"name,omitempty"`
	AssetType AssetType    `json:"assetType,omitempty"`
}

// Ledger is a portfolio snapshot: symbol → holding, keys uppercase and unique.
type Ledger map[string]Holding

// NewLedger builds a ledger from a holdings list. Symbols are uppercased;
// duplicate symbols overwrite earlier entries (last one wins).
func NewLedger(holdings []Holding) Ledger {
	ledger := make(Ledger, len(holdings))
	for _, h := range holdings {
		sym := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if sym == "" {
			continue
		}
		h.Symbol = sym
		ledger[sym] = h
	}
	return ledger
}

// Clone returns an independent copy of the ledger.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for sym, h := range l {
		out[sym] = h
	}
	return out
}

// TotalValue sums the market value of all holdings.
func (l Ledger) TotalValue() float64 {
	total := 0.0
	for _, h := range l {
		total += h.Value()
	}
	return total
}

// Count returns the number of holdings.
func (l Ledger) Count() int {
	return len(l)
}

// AssetTypes returns the set of distinct asset types present.
func (l Ledger) AssetTypes() map[AssetType]bool {
	types := make(map[AssetType]bool)
	for _, h := range l {
		types[h.Type()] = true
	}
	return types
}

// AssetTypeCount returns the number of distinct asset types present.
func (l Ledger) AssetTypeCount() int {
	return len(l.AssetTypes())
}

// TopHolding returns the symbol and portfolio percentage of the largest
// single holding by value. Returns ("", 0) for an empty or zero-value ledger.
func (l Ledger) TopHolding() (string, float64) {
	total := l.TotalValue()
	if total <= 0 {
		return "", 0
	}

	topSymbol := ""
	topValue := 0.0
	for sym, h := range l {
		if v := h.Value(); v > topValue {
			topValue = v
			topSymbol = sym
		}
	}
	return topSymbol, topValue / total * 100
}

// Weights returns each holding's value weight in percentage points.
// Weights sum to 100 when total value is positive; empty map otherwise.
func (l Ledger) Weights() map[string]float64 {
	total := l.TotalValue()
	if total <= 0 {
		return map[string]float64{}
	}

	weights := make(map[string]float64, len(l))
	for sym, h := range l {
		weights[sym] = h.Value() / total * 100
	}
	return weights
}

// AllocationByType returns asset type → percentage of total value.
// All percentages are 0 when total value is 0.
func (l Ledger) AllocationByType() map[AssetType]float64 {
	alloc := make(map[AssetType]float64)
	total := l.TotalValue()

	for _, h := range l {
		t := h.Type()
		if total > 0 {
			alloc[t] += h.Value() / total * 100
		} else if _, ok := alloc[t]; !ok {
			alloc[t] = 0
		}
	}
	return alloc
}

// Holdings returns the ledger contents as a slice, order unspecified.
func (l Ledger) Holdings() []Holding {
	out := make([]Holding, 0, len(l))
	for _, h := range l {
		out = append(out, h)
	}
	return out
}
