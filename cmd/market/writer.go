package main

type MarketWriter = string

const (
	MarketWriterDuckDB MarketWriter = "duckdb"
)
