package mirror

// Timestamp is the mirror's native `seconds.nanos` string timestamp,
// carried as a string throughout since every endpoint both accepts and
// returns it verbatim as a query parameter or field value.
type Timestamp = string

// Block is the mirror's block record.
type Block struct {
	Number          int64      `json:"number"`
	Hash            string     `json:"hash"`
	PreviousHash    string     `json:"previous_hash"`
	Timestamp       TimeRange  `json:"timestamp"`
	GasUsed         int64      `json:"gas_used"`
	LogsBloom       string     `json:"logs_bloom"`
	Count           int        `json:"count"`
	Size            int64      `json:"size"`
}

// TimeRange is the mirror's [from, to) timestamp window attached to
// blocks and used to bound contract-result/log queries.
type TimeRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ContractResult is the mirror's record of one EVM transaction execution.
type ContractResult struct {
	Hash                 string   `json:"hash"`
	TransactionIndex     int      `json:"transaction_index"`
	BlockHash            string   `json:"block_hash"`
	BlockNumber          int64    `json:"block_number"`
	From                 string   `json:"from"`
	To                   *string  `json:"to"`
	Amount               int64    `json:"amount"`
	GasUsed              int64    `json:"gas_used"`
	GasLimit             int64    `json:"gas_limit"`
	GasPrice             string   `json:"gas_price"`
	Nonce                uint64   `json:"nonce"`
	Status               string   `json:"status"`
	Result               string   `json:"result"`
	ErrorMessage         string   `json:"error_message"`
	FunctionParameters   string   `json:"function_parameters"`
	CallResult           string   `json:"call_result"`
	V                    int64    `json:"v"`
	R                    string   `json:"r"`
	S                    string   `json:"s"`
	Type                 *int     `json:"type"`
	ChainID              string   `json:"chain_id"`
	MaxFeePerGas         string   `json:"max_fee_per_gas"`
	MaxPriorityFeePerGas string   `json:"max_priority_fee_per_gas"`
	AccessList           string   `json:"access_list"`
	Timestamp            string   `json:"timestamp"`
	Logs                 []Log    `json:"logs,omitempty"`
}

// Log is the mirror's log record.
type Log struct {
	Address          string   `json:"address"`
	BlockHash        string   `json:"block_hash"`
	BlockNumber      int64    `json:"block_number"`
	Data             string   `json:"data"`
	Index            int      `json:"index"`
	Topics           []string `json:"topics"`
	TransactionHash  string   `json:"transaction_hash"`
	TransactionIndex int      `json:"transaction_index"`
	Timestamp        string   `json:"timestamp"`
}

// Opcode is a single step of an opcode-level execution trace.
type Opcode struct {
	Pc            int      `json:"pc"`
	Op            string   `json:"op"`
	Gas           int64    `json:"gas"`
	GasCost       int64    `json:"gas_cost"`
	Depth         int      `json:"depth"`
	Stack         []string `json:"stack,omitempty"`
	Memory        []string `json:"memory,omitempty"`
	Storage       map[string]string `json:"storage,omitempty"`
	Reason        string   `json:"reason,omitempty"`
}

// Action is one call-frame action from a contract-results actions query,
// the source material for the prestate/call tracer shapes.
type Action struct {
	CallType     string `json:"call_type"`
	From         string `json:"from"`
	To           string `json:"to"`
	Input        string `json:"input"`
	ResultData   string `json:"result_data"`
	Gas          int64  `json:"gas"`
	GasUsed      int64  `json:"gas_used"`
	Value        string `json:"value"`
	CallDepth    int    `json:"call_depth"`
}

// Account is the mirror's account record.
type Account struct {
	Account             string  `json:"account"`
	EVMAddress          string  `json:"evm_address"`
	Balance             Balance `json:"balance"`
	EthereumNonce       *uint64 `json:"ethereum_nonce"`
	ReceiverSigRequired bool    `json:"receiver_sig_required"`
}

// Balance is the balance sub-object of an account record, denominated in
// tinybar.
type Balance struct {
	Timestamp string `json:"timestamp"`
	Balance   int64  `json:"balance"`
}

// ContractState is a single contract storage slot value.
type ContractState struct {
	Address string `json:"address"`
	Slot    string `json:"slot"`
	Value   string `json:"value"`
}

// NetworkFees is the mirror's current fee schedule.
type NetworkFees struct {
	Fees      []NetworkFee `json:"fees"`
	Timestamp string       `json:"timestamp"`
}

// NetworkFee is one entry of the fee schedule, keyed by transaction type.
type NetworkFee struct {
	Gas             int64  `json:"gas"`
	TransactionType string `json:"transaction_type"`
}

// ExchangeRate is the mirror's current tinybar/USD exchange rate record.
type ExchangeRate struct {
	CentEquivalent int64 `json:"cent_equivalent"`
	HbarEquivalent int64 `json:"hbar_equivalent"`
	ExpirationTime int64 `json:"expiration_time"`
}

// ContractSummary is the minimal contract record used to resolve an
// address to its canonical EVM form.
type ContractSummary struct {
	ContractID string `json:"contract_id"`
	EVMAddress string `json:"evm_address"`
	Bytecode   string `json:"runtime_bytecode"`
	CreatedTimestamp string `json:"created_timestamp"`
}

// TokenSummary is the minimal token record used to distinguish a token
// address from a contract or plain account.
type TokenSummary struct {
	TokenID string `json:"token_id"`
}

// EntityType tags the resolved kind of an address for resolveEntityType.
type EntityType string

const (
	EntityContract EntityType = "contract"
	EntityToken    EntityType = "token"
	EntityAccount  EntityType = "account"
)

// ResolvedEntity is the tagged result of resolveEntityType.
type ResolvedEntity struct {
	Type   EntityType
	Entity interface{}
}
