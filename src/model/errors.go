package model

import "fmt"

// DataFetchError wraps a market data transport or timeout failure. The tick
// loop retries these with backoff and skips the symbol on exhaustion.
type DataFetchError struct {
	Symbol string
	Err    error
}

func (e *DataFetchError) Error() string {
	return fmt.Sprintf("market data fetch failed for %s: %v", e.Symbol, e.Err)
}

func (e *DataFetchError) Unwrap() error { return e.Err }

// ExchangeError wraps an order placement or fill failure. The signal is
// dropped without any portfolio mutation.
type ExchangeError struct {
	Symbol string
	Err    error
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("exchange call failed for %s: %v", e.Symbol, e.Err)
}

func (e *ExchangeError) Unwrap() error { return e.Err }

// ConfigurationError marks invalid strategy parameters or a missing
// exchange binding. It is fatal to the call that produced it; the bot
// remains stopped.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// PersistenceError wraps a durable-store write failure. Writes are retried;
// on repeated failure the in-memory state stays authoritative for the
// session and the error surfaces as a warning.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
