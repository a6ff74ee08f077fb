package errors

var (
	ErrUnknown               = New(ERR_UNKNOWN, "unknown error")
	ErrInvalidArgument       = New(ERR_INVALID_ARGUMENT, "invalid argument")
	ErrThresholdExceeded     = New(ERR_THRESHOLD_EXCEEDED, "threshold exceeded")
	ErrNotFound              = New(ERR_NOT_FOUND, "not found")
	ErrProcessing            = New(ERR_PROCESSING, "error processing")
	ErrConfiguration         = New(ERR_CONFIGURATION, "configuration error")
	ErrContext               = New(ERR_CONTEXT, "context error")
	ErrContextCanceled       = New(ERR_CONTEXT_CANCELED, "context canceled")
	ErrError                 = New(ERR_ERROR, "generic error")
	ErrBlockNotFound         = New(ERR_BLOCK_NOT_FOUND, "block not found")
	ErrBlockInvalid          = New(ERR_BLOCK_INVALID, "block invalid")
	ErrBlockExists           = New(ERR_BLOCK_EXISTS, "block exists")
	ErrBlockError            = New(ERR_BLOCK_ERROR, "block error")
	ErrInvalidPreviousTip    = New(ERR_BLOCK_INVALID_PREVIOUS_TIP, "previous block is not the current tip")
	ErrBlockCoinbaseInvalid  = New(ERR_BLOCK_COINBASE_INVALID, "block coinbase invalid")
	ErrBlockRejectedRecently = New(ERR_BLOCK_REJECTED_RECENTLY, "block rejected recently")
	ErrTxNotFound            = New(ERR_TX_NOT_FOUND, "tx not found")
	ErrTxInvalid             = New(ERR_TX_INVALID, "tx invalid")
	ErrTxInvalidDoubleSpend  = New(ERR_TX_INVALID_DOUBLE_SPEND, "tx invalid double spend")
	ErrTxAlreadyExists       = New(ERR_TX_ALREADY_EXISTS, "tx already exists")
	ErrTxError               = New(ERR_TX_ERROR, "tx error")
	ErrTxDuplicate           = New(ERR_TX_DUPLICATE, "tx overwrites unspent outputs of an existing tx")
	ErrTxMissingInputs       = New(ERR_TX_MISSING_INPUTS, "tx inputs missing or spent")
	ErrTxCoinbaseImmature    = New(ERR_TX_COINBASE_IMMATURE, "tx spends immature coinbase")
	ErrTxInvalidAmount       = New(ERR_TX_INVALID_AMOUNT, "tx amount invalid")
	ErrServiceUnavailable    = New(ERR_SERVICE_UNAVAILABLE, "service unavailable")
	ErrServiceNotStarted     = New(ERR_SERVICE_NOT_STARTED, "service not started")
	ErrServiceError          = New(ERR_SERVICE_ERROR, "service error")
	ErrStorageUnavailable    = New(ERR_STORAGE_UNAVAILABLE, "storage unavailable")
	ErrStorageNotStarted     = New(ERR_STORAGE_NOT_STARTED, "storage not started")
	ErrStorageError          = New(ERR_STORAGE_ERROR, "storage error")
	ErrUtxoNotFound          = New(ERR_UTXO_NOT_FOUND, "utxo not found")
	ErrSpent                 = New(ERR_UTXO_SPENT, "utxo already spent")
	ErrStateInitialization   = New(ERR_STATE_INITIALIZATION, "state initialization error")
	ErrStateError            = New(ERR_STATE_ERROR, "state error")
	ErrNetworkError          = New(ERR_NETWORK_ERROR, "network error")
	ErrNetworkTimeout        = New(ERR_NETWORK_TIMEOUT, "network timeout")
)

// errors initialization functions

func NewUnknownError(message string, params ...interface{}) error {
	return New(ERR_UNKNOWN, message, params...)
}
func NewInvalidArgumentError(message string, params ...interface{}) error {
	return New(ERR_INVALID_ARGUMENT, message, params...)
}
func NewThresholdExceededError(message string, params ...interface{}) error {
	return New(ERR_THRESHOLD_EXCEEDED, message, params...)
}
func NewNotFoundError(message string, params ...interface{}) error {
	return New(ERR_NOT_FOUND, message, params...)
}
func NewProcessingError(message string, params ...interface{}) error {
	return New(ERR_PROCESSING, message, params...)
}
func NewConfigurationError(message string, params ...interface{}) error {
	return New(ERR_CONFIGURATION, message, params...)
}
func NewContextError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT, message, params...)
}
func NewContextCanceledError(message string, params ...interface{}) error {
	return New(ERR_CONTEXT_CANCELED, message, params...)
}
func NewError(message string, params ...interface{}) error {
	return New(ERR_ERROR, message, params...)
}
func NewBlockNotFoundError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_NOT_FOUND, message, params...)
}
func NewBlockInvalidError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_INVALID, message, params...)
}
func NewBlockExistsError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_EXISTS, message, params...)
}
func NewBlockError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_ERROR, message, params...)
}
func NewInvalidPreviousTipError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_INVALID_PREVIOUS_TIP, message, params...)
}
func NewBlockCoinbaseInvalidError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_COINBASE_INVALID, message, params...)
}
func NewBlockRejectedRecentlyError(message string, params ...interface{}) error {
	return New(ERR_BLOCK_REJECTED_RECENTLY, message, params...)
}
func NewTxNotFoundError(message string, params ...interface{}) error {
	return New(ERR_TX_NOT_FOUND, message, params...)
}
func NewTxInvalidError(message string, params ...interface{}) error {
	return New(ERR_TX_INVALID, message, params...)
}
func NewTxInvalidDoubleSpendError(message string, params ...interface{}) error {
	return New(ERR_TX_INVALID_DOUBLE_SPEND, message, params...)
}
func NewTxAlreadyExistsError(message string, params ...interface{}) error {
	return New(ERR_TX_ALREADY_EXISTS, message, params...)
}
func NewTxError(message string, params ...interface{}) error {
	return New(ERR_TX_ERROR, message, params...)
}
func NewTxDuplicateError(message string, params ...interface{}) error {
	return New(ERR_TX_DUPLICATE, message, params...)
}
func NewTxMissingInputsError(message string, params ...interface{}) error {
	return New(ERR_TX_MISSING_INPUTS, message, params...)
}
func NewTxCoinbaseImmatureError(message string, params ...interface{}) error {
	return New(ERR_TX_COINBASE_IMMATURE, message, params...)
}
func NewTxInvalidAmountError(message string, params ...interface{}) error {
	return New(ERR_TX_INVALID_AMOUNT, message, params...)
}
func NewServiceUnavailableError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_UNAVAILABLE, message, params...)
}
func NewServiceNotStartedError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_NOT_STARTED, message, params...)
}
func NewServiceError(message string, params ...interface{}) error {
	return New(ERR_SERVICE_ERROR, message, params...)
}
func NewStorageUnavailableError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_UNAVAILABLE, message, params...)
}
func NewStorageNotStartedError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_NOT_STARTED, message, params...)
}
func NewStorageError(message string, params ...interface{}) error {
	return New(ERR_STORAGE_ERROR, message, params...)
}
func NewUtxoNotFoundError(message string, params ...interface{}) error {
	return New(ERR_UTXO_NOT_FOUND, message, params...)
}
func NewSpentError(message string, params ...interface{}) error {
	return New(ERR_UTXO_SPENT, message, params...)
}
func NewStateInitializationError(message string, params ...interface{}) error {
	return New(ERR_STATE_INITIALIZATION, message, params...)
}
func NewStateError(message string, params ...interface{}) error {
	return New(ERR_STATE_ERROR, message, params...)
}
func NewNetworkError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_ERROR, message, params...)
}
func NewNetworkTimeoutError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_TIMEOUT, message, params...)
}
func NewNetworkConnectionRefusedError(message string, params ...interface{}) error {
	return New(ERR_NETWORK_CONNECTION_REFUSED, message, params...)
}
