package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter      ErrorCode = 100
	ErrCodeInvalidConfiguration  ErrorCode = 101
	ErrCodeInvalidParameterRange ErrorCode = 102
	ErrCodeInvalidOptions        ErrorCode = 103
	ErrCodeInvalidMetric         ErrorCode = 104
	ErrCodeInsufficientData      ErrorCode = 105
	ErrCodeInvalidType           ErrorCode = 106
	ErrCodeMissingParameter      ErrorCode = 107
	ErrCodeInvalidVersion        ErrorCode = 108
	ErrCodeInvalidPeriod         ErrorCode = 109

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeHistoricalDataFailed  ErrorCode = 203
	ErrCodeNoDataFound           ErrorCode = 204

	// Strategy/Selection errors (400-499)
	ErrCodeStrategyNotFound         ErrorCode = 400
	ErrCodeStrategyAlreadyExists    ErrorCode = 401
	ErrCodeStrategyRuntimeError     ErrorCode = 402
	ErrCodeNoCandidateAvailable     ErrorCode = 403
	ErrCodeStrategyResolutionFailed ErrorCode = 404
	ErrCodeVersionMismatch          ErrorCode = 405

	// Engine errors (600-699)
	ErrCodeEngineConfigError   ErrorCode = 600
	ErrCodeEngineInitFailed    ErrorCode = 601
	ErrCodeEngineDataPathError ErrorCode = 602
	ErrCodeEngineNoStrategies  ErrorCode = 603
	ErrCodeEngineNoDatasource  ErrorCode = 604

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
)
