package errors

import "strconv"

// ERR is the numeric error code carried by every *Error. Codes are grouped in ranges of ten so
// that GetErrorCategory can classify an error without a lookup table.
type ERR int32

const (
	ERR_UNKNOWN            ERR = 0
	ERR_INVALID_ARGUMENT   ERR = 1
	ERR_THRESHOLD_EXCEEDED ERR = 2
	ERR_NOT_FOUND          ERR = 3
	ERR_PROCESSING         ERR = 4
	ERR_CONFIGURATION      ERR = 5
	ERR_CONTEXT            ERR = 6
	ERR_CONTEXT_CANCELED   ERR = 7
	ERR_ERROR              ERR = 9

	// block errors 10-19
	ERR_BLOCK_NOT_FOUND            ERR = 10
	ERR_BLOCK_INVALID              ERR = 11
	ERR_BLOCK_EXISTS               ERR = 12
	ERR_BLOCK_ERROR                ERR = 13
	ERR_BLOCK_INVALID_PREVIOUS_TIP ERR = 14
	ERR_BLOCK_COINBASE_INVALID     ERR = 15
	ERR_BLOCK_REJECTED_RECENTLY    ERR = 16

	// transaction errors 30-49
	ERR_TX_NOT_FOUND            ERR = 30
	ERR_TX_INVALID              ERR = 31
	ERR_TX_INVALID_DOUBLE_SPEND ERR = 32
	ERR_TX_ALREADY_EXISTS       ERR = 33
	ERR_TX_ERROR                ERR = 34
	ERR_TX_DUPLICATE            ERR = 35
	ERR_TX_MISSING_INPUTS       ERR = 36
	ERR_TX_COINBASE_IMMATURE    ERR = 37
	ERR_TX_INVALID_AMOUNT       ERR = 38

	// service errors 50-59
	ERR_SERVICE_UNAVAILABLE ERR = 50
	ERR_SERVICE_NOT_STARTED ERR = 51
	ERR_SERVICE_ERROR       ERR = 52

	// storage errors 60-69
	ERR_STORAGE_UNAVAILABLE ERR = 60
	ERR_STORAGE_NOT_STARTED ERR = 61
	ERR_STORAGE_ERROR       ERR = 62

	// utxo errors 70-79
	ERR_UTXO_NOT_FOUND ERR = 70
	ERR_UTXO_SPENT     ERR = 71

	// state errors 100-109
	ERR_STATE_INITIALIZATION ERR = 100
	ERR_STATE_ERROR          ERR = 101

	// network errors 110-119
	ERR_NETWORK_ERROR              ERR = 110
	ERR_NETWORK_TIMEOUT            ERR = 111
	ERR_NETWORK_CONNECTION_REFUSED ERR = 112
)

var ERR_name = map[int32]string{
	0:   "UNKNOWN",
	1:   "INVALID_ARGUMENT",
	2:   "THRESHOLD_EXCEEDED",
	3:   "NOT_FOUND",
	4:   "PROCESSING",
	5:   "CONFIGURATION",
	6:   "CONTEXT",
	7:   "CONTEXT_CANCELED",
	9:   "ERROR",
	10:  "BLOCK_NOT_FOUND",
	11:  "BLOCK_INVALID",
	12:  "BLOCK_EXISTS",
	13:  "BLOCK_ERROR",
	14:  "BLOCK_INVALID_PREVIOUS_TIP",
	15:  "BLOCK_COINBASE_INVALID",
	16:  "BLOCK_REJECTED_RECENTLY",
	30:  "TX_NOT_FOUND",
	31:  "TX_INVALID",
	32:  "TX_INVALID_DOUBLE_SPEND",
	33:  "TX_ALREADY_EXISTS",
	34:  "TX_ERROR",
	35:  "TX_DUPLICATE",
	36:  "TX_MISSING_INPUTS",
	37:  "TX_COINBASE_IMMATURE",
	38:  "TX_INVALID_AMOUNT",
	50:  "SERVICE_UNAVAILABLE",
	51:  "SERVICE_NOT_STARTED",
	52:  "SERVICE_ERROR",
	60:  "STORAGE_UNAVAILABLE",
	61:  "STORAGE_NOT_STARTED",
	62:  "STORAGE_ERROR",
	70:  "UTXO_NOT_FOUND",
	71:  "UTXO_SPENT",
	100: "STATE_INITIALIZATION",
	101: "STATE_ERROR",
	110: "NETWORK_ERROR",
	111: "NETWORK_TIMEOUT",
	112: "NETWORK_CONNECTION_REFUSED",
}

func (x ERR) String() string {
	if name, ok := ERR_name[int32(x)]; ok {
		return name
	}

	return "ERR(" + strconv.Itoa(int(x)) + ")"
}
