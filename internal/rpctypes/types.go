package rpctypes

// Block is the Ethereum-shaped block record returned by getBlockByHash and
// getBlockByNumber.
type Block struct {
	Hash             string        `json:"hash"`
	ParentHash       string        `json:"parentHash"`
	Number           string        `json:"number"`
	Timestamp        string        `json:"timestamp"`
	GasUsed          string        `json:"gasUsed"`
	GasLimit         string        `json:"gasLimit"`
	BaseFeePerGas    string        `json:"baseFeePerGas"`
	LogsBloom        string        `json:"logsBloom"`
	Miner            string        `json:"miner"`
	Difficulty       string        `json:"difficulty"`
	TotalDifficulty  string        `json:"totalDifficulty"`
	Uncles           []string      `json:"uncles"`
	Sha3Uncles       string        `json:"sha3Uncles"`
	MixHash          string        `json:"mixHash"`
	Nonce            string        `json:"nonce"`
	ExtraData        string        `json:"extraData"`
	StateRoot        string        `json:"stateRoot"`
	ReceiptsRoot     string        `json:"receiptsRoot"`
	TransactionsRoot string        `json:"transactionsRoot"`
	Size             string        `json:"size"`
	Transactions     []interface{} `json:"transactions"`
}

// Transaction is the tagged-union Ethereum transaction shape. Fields that
// do not apply to a given Type are left at their zero value and omitted
// from the wire encoding by the caller's marshaling choice (handled in
// MarshalJSON below) to keep legacy transactions free of type-2/type-1
// fields, per the data model's "never mixed" requirement for field
// presence.
type Transaction struct {
	Type                 int      `json:"type"`
	Hash                 string   `json:"hash"`
	Nonce                string   `json:"nonce"`
	From                 string   `json:"from"`
	To                   *string  `json:"to"`
	Value                string   `json:"value"`
	Gas                  string   `json:"gas"`
	GasPrice             string   `json:"gasPrice,omitempty"`
	Input                string   `json:"input"`
	V                    string   `json:"v"`
	R                    string   `json:"r"`
	S                    string   `json:"s"`
	BlockHash            *string  `json:"blockHash"`
	BlockNumber          *string  `json:"blockNumber"`
	TransactionIndex     *string  `json:"transactionIndex"`
	ChainID              string   `json:"chainId,omitempty"`
	AccessList           []string `json:"accessList,omitempty"`
	MaxFeePerGas         string   `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string   `json:"maxPriorityFeePerGas,omitempty"`
}

// Log is the Ethereum-shaped event log record.
type Log struct {
	Address          string   `json:"address"`
	BlockHash        string   `json:"blockHash"`
	BlockNumber      string   `json:"blockNumber"`
	Data             string   `json:"data"`
	LogIndex         string   `json:"logIndex"`
	Removed          bool     `json:"removed"`
	Topics           []string `json:"topics"`
	TransactionHash  string   `json:"transactionHash"`
	TransactionIndex string   `json:"transactionIndex"`
}

// Receipt is the Ethereum-shaped transaction receipt, covering both the
// regular (contract-result-backed) and synthetic (log-only) shapes; a
// synthetic receipt simply leaves the gas/status/root fields at their
// zero-transaction defaults.
type Receipt struct {
	BlockHash         string  `json:"blockHash"`
	BlockNumber       string  `json:"blockNumber"`
	From              string  `json:"from"`
	To                *string `json:"to"`
	CumulativeGasUsed string  `json:"cumulativeGasUsed"`
	GasUsed           string  `json:"gasUsed"`
	ContractAddress   *string `json:"contractAddress"`
	Logs              []Log   `json:"logs"`
	LogsBloom         string  `json:"logsBloom"`
	TransactionHash   string  `json:"transactionHash"`
	TransactionIndex  string  `json:"transactionIndex"`
	EffectiveGasPrice string  `json:"effectiveGasPrice"`
	Root              *string `json:"root"`
	Status            string  `json:"status"`
	Type              string  `json:"type"`
}

// CallFrame is one entry of a call tracer's flattened call tree.
type CallFrame struct {
	Type         string      `json:"type"`
	From         string      `json:"from"`
	To           string      `json:"to"`
	Value        string      `json:"value"`
	Gas          string      `json:"gas"`
	GasUsed      string      `json:"gasUsed"`
	Input        string      `json:"input"`
	Output       string      `json:"output"`
	Calls        []CallFrame `json:"calls,omitempty"`
	Error        string      `json:"error,omitempty"`
	RevertReason string      `json:"revertReason,omitempty"`
}

// StructLog is one opcode-logger step.
type StructLog struct {
	Pc      int64              `json:"pc"`
	Op      string             `json:"op"`
	Gas     int64              `json:"gas"`
	GasCost int64              `json:"gasCost"`
	Depth   int                `json:"depth"`
	Stack   []string           `json:"stack"`
	Memory  []string           `json:"memory"`
	Storage map[string]string  `json:"storage"`
	Reason  *string            `json:"reason"`
}

// OpcodeLoggerResult is the top-level opcode tracer response.
type OpcodeLoggerResult struct {
	Gas         int64       `json:"gas"`
	Failed      bool        `json:"failed"`
	ReturnValue string      `json:"returnValue"`
	StructLogs  []StructLog `json:"structLogs"`
}

// PrestateAccount is one entry of a prestate tracer result.
type PrestateAccount struct {
	Balance string            `json:"balance"`
	Nonce   uint64            `json:"nonce"`
	Code    string            `json:"code"`
	Storage map[string]string `json:"storage"`
}
