package bridge

// Chain describes one supported EVM source chain.
type Chain struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Explorer string `json:"explorer"`
}

// SupportedChains lists the EVM chains orders can originate from, in display
// order.
var SupportedChains = []Chain{
	{ID: 1, Name: "Ethereum", Symbol: "ETH", Explorer: "https://etherscan.io"},
	{ID: 42161, Name: "Arbitrum", Symbol: "ETH", Explorer: "https://arbiscan.io"},
	{ID: 8453, Name: "Base", Symbol: "ETH", Explorer: "https://basescan.org"},
	{ID: 137, Name: "Polygon", Symbol: "MATIC", Explorer: "https://polygonscan.com"},
	{ID: 56, Name: "BNB Chain", Symbol: "BNB", Explorer: "https://bscscan.com"},
	{ID: 43114, Name: "Avalanche", Symbol: "AVAX", Explorer: "https://snowtrace.io"},
	{ID: 10, Name: "Optimism", Symbol: "ETH", Explorer: "https://optimistic.etherscan.io"},
}

// ChainByID looks up a supported chain.
func ChainByID(id int64) (Chain, bool) {
	for _, c := range SupportedChains {
		if c.ID == id {
			return c, true
		}
	}
	return Chain{}, false
}

// ExplorerTxURL returns the block explorer link for a transaction hash.
// Unknown chains fall back to Etherscan.
func ExplorerTxURL(chainID int64, txHash string) string {
	c, ok := ChainByID(chainID)
	if !ok {
		c = SupportedChains[0]
	}
	return c.Explorer + "/tx/" + txHash
}
