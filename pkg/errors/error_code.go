package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPosition      ErrorCode = 102
	ErrCodeMissingParameter     ErrorCode = 103

	// Data errors (200-299)
	ErrCodeInvalidBar     ErrorCode = 200
	ErrCodeMissingDate    ErrorCode = 201
	ErrCodeInvalidPrice   ErrorCode = 202
	ErrCodeDataReadFailed ErrorCode = 203

	// Cost model errors (300-399)
	ErrCodeUnknownPreset     ErrorCode = 300
	ErrCodeInvalidAssetClass ErrorCode = 301

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError  ErrorCode = 400
	ErrCodeStrategyRuntimeError ErrorCode = 401

	// Backtest errors (600-699)
	ErrCodeBacktestConfigError    ErrorCode = 600
	ErrCodeBacktestNotInitialized ErrorCode = 601
	ErrCodeBacktestNoData         ErrorCode = 602

	// Results/persistence errors (700-799)
	ErrCodeResultsWriteFailed ErrorCode = 700
	ErrCodeResultsReadFailed  ErrorCode = 701
)
