// Package btcfolio tracks a personal Bitcoin position bought on an exchange.
//
// The package holds the data model shared by the collector and the
// presenter:
//   - Trades: the exchange ledger, kept in the exact shape the exchange
//     returns it so that the persisted document stays auditable.
//   - Snapshot: the single persisted JSON document combining the latest
//     balance, spot price, trade list and a day-indexed history of closing
//     prices.
//   - Reconciliation: a stateless calculation turning a snapshot and a spot
//     price into consistent aggregate figures (invested capital, realized
//     proceeds, dollar-cost average, holdings value, performance) and the
//     time series used for charts.
//   - Stores: the narrow read/write contract of the remote document store.
//
// The `btcf` command-line tool wires these pieces with the exchange, the
// price oracle and the document store.
package btcfolio
