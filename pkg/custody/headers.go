package custody

const (
	Version = "1.0.0"

	// IdempotencyKeyHeader carries an optional caller chosen key for a transfer
	IdempotencyKeyHeader = "Idempotency-Key"
	// RequestIDHeader is echoed back on every response
	RequestIDHeader = "X-Request-Id"
)
