package main

type MarketProvider = string

const (
	MarketProviderPolygon MarketProvider = "polygon"
	MarketProviderBinance MarketProvider = "binance"
)
