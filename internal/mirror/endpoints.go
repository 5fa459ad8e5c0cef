package mirror

import (
	"context"
	"fmt"
	"net/url"
)

// GetBlockByHash fetches the block record identified by hash. A nil,nil
// return means the mirror has no such block.
func (c *Client) GetBlockByHash(ctx context.Context, requestID, hash string) (*Block, error) {
	var b Block
	found, err := c.get(ctx, requestID, "/api/v1/blocks/"+hash, &b)
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

// GetBlockByNumber fetches the block record at number.
func (c *Client) GetBlockByNumber(ctx context.Context, requestID string, number int64) (*Block, error) {
	var b Block
	found, err := c.get(ctx, requestID, fmt.Sprintf("/api/v1/blocks/%d", number), &b)
	if err != nil || !found {
		return nil, err
	}
	return &b, nil
}

type blocksPage struct {
	Blocks []Block `json:"blocks"`
}

// GetLatestBlock returns the most recent block the mirror has indexed.
func (c *Client) GetLatestBlock(ctx context.Context, requestID string) (*Block, error) {
	var page blocksPage
	found, err := c.get(ctx, requestID, "/api/v1/blocks?limit=1&order=desc", &page)
	if err != nil || !found || len(page.Blocks) == 0 {
		return nil, err
	}
	return &page.Blocks[0], nil
}

// GetEarliestBlock returns the oldest block the mirror has indexed, used
// to detect a partial mirror (earliest block number > 1).
func (c *Client) GetEarliestBlock(ctx context.Context, requestID string) (*Block, error) {
	var page blocksPage
	found, err := c.get(ctx, requestID, "/api/v1/blocks?limit=1&order=asc", &page)
	if err != nil || !found || len(page.Blocks) == 0 {
		return nil, err
	}
	return &page.Blocks[0], nil
}

// GetContractResult fetches the single contract-result record for a
// transaction hash or transaction id string.
func (c *Client) GetContractResult(ctx context.Context, requestID, hashOrID string) (*ContractResult, error) {
	var cr ContractResult
	found, err := c.get(ctx, requestID, "/api/v1/contracts/results/"+hashOrID, &cr)
	if err != nil || !found {
		return nil, err
	}
	return &cr, nil
}

type contractResultsPage struct {
	Results []ContractResult `json:"results"`
}

// GetContractResultsByBlockAndIndex fetches all contract results for a
// block, used by block-fill and by-index lookups.
func (c *Client) GetContractResultsByBlock(ctx context.Context, requestID, blockHashOrNumber string) ([]ContractResult, error) {
	var page contractResultsPage
	path := fmt.Sprintf("/api/v1/contracts/results?block.hash=%s&limit=100&order=asc", url.QueryEscape(blockHashOrNumber))
	found, err := c.get(ctx, requestID, path, &page)
	if err != nil || !found {
		return nil, err
	}
	return page.Results, nil
}

type logsPage struct {
	Logs []Log `json:"logs"`
}

// GetLogsByTransactionHash probes for synthetic-transaction log entries
// that have no matching contract-result record.
func (c *Client) GetLogsByTransactionHash(ctx context.Context, requestID, hash string) ([]Log, error) {
	var page logsPage
	path := "/api/v1/contracts/results/logs?transaction.hash=" + url.QueryEscape(hash)
	found, err := c.get(ctx, requestID, path, &page)
	if err != nil || !found {
		return nil, err
	}
	return page.Logs, nil
}

// LogsQuery parameters for GetLogs, mirroring the getLogsParams schema
// shape (§4.5): either an explicit address list or a timestamp range, plus
// an optional topic filter.
type LogsQuery struct {
	Address   []string
	FromTime  string
	ToTime    string
	Topics    [][]string
}

// GetLogs queries the mirror's logs endpoint by address (when provided)
// or by time range, sorted ascending by timestamp.
func (c *Client) GetLogs(ctx context.Context, requestID string, q LogsQuery) ([]Log, error) {
	v := url.Values{}
	v.Set("order", "asc")
	v.Set("limit", "100")
	for _, a := range q.Address {
		v.Add("account.id", a)
	}
	if q.FromTime != "" {
		v.Set("timestamp", "gte:"+q.FromTime)
	}
	if q.ToTime != "" {
		v.Add("timestamp", "lte:"+q.ToTime)
	}
	for i, group := range q.Topics {
		if len(group) == 0 {
			continue
		}
		for _, t := range group {
			v.Add(fmt.Sprintf("topic%d", i), t)
		}
	}

	var page logsPage
	found, err := c.get(ctx, requestID, "/api/v1/contracts/results/logs?"+v.Encode(), &page)
	if err != nil || !found {
		return nil, err
	}
	return page.Logs, nil
}

type opcodesResponse struct {
	Opcodes []Opcode `json:"opcodes"`
}

// GetContractResultOpcodes fetches the opcode-level execution trace for a
// transaction, backing the opcodeLogger debug tracer.
func (c *Client) GetContractResultOpcodes(ctx context.Context, requestID, hash string) ([]Opcode, error) {
	return c.GetContractResultOpcodesWithFlags(ctx, requestID, hash, OpcodeTraceFlags{Memory: true, Stack: true, Storage: true})
}

// OpcodeTraceFlags selects which optional opcode-step fields the mirror
// populates, mirroring go-ethereum's vm.LogConfig flags.
type OpcodeTraceFlags struct {
	Memory  bool
	Stack   bool
	Storage bool
}

// GetContractResultOpcodesWithFlags fetches the opcode trace with the
// given capture flags applied as query parameters.
func (c *Client) GetContractResultOpcodesWithFlags(ctx context.Context, requestID, hash string, flags OpcodeTraceFlags) ([]Opcode, error) {
	path := fmt.Sprintf("/api/v1/contracts/results/%s/opcodes?memory=%t&stack=%t&storage=%t", hash, flags.Memory, flags.Stack, flags.Storage)
	var resp opcodesResponse
	found, err := c.get(ctx, requestID, path, &resp)
	if err != nil || !found {
		return nil, err
	}
	return resp.Opcodes, nil
}

type actionsResponse struct {
	Actions []Action `json:"actions"`
}

// GetContractResultActions fetches the call-frame action list for a
// transaction, backing the callTracer and prestateTracer shapes.
func (c *Client) GetContractResultActions(ctx context.Context, requestID, hash string) ([]Action, error) {
	var resp actionsResponse
	found, err := c.get(ctx, requestID, "/api/v1/contracts/results/"+hash+"/actions", &resp)
	if err != nil || !found {
		return nil, err
	}
	return resp.Actions, nil
}

// GetAccount fetches the account record for an EVM address or account id.
func (c *Client) GetAccount(ctx context.Context, requestID, idOrAddress string) (*Account, error) {
	var acc Account
	found, err := c.get(ctx, requestID, "/api/v1/accounts/"+idOrAddress, &acc)
	if err != nil || !found {
		return nil, err
	}
	return &acc, nil
}

// GetBalanceAtTimestamp fetches an account's balance as of a historical
// timestamp, used for getBalance on blocks outside the refresh window.
func (c *Client) GetBalanceAtTimestamp(ctx context.Context, requestID, idOrAddress, timestamp string) (*Account, error) {
	var acc Account
	path := fmt.Sprintf("/api/v1/accounts/%s?timestamp=%s", idOrAddress, url.QueryEscape(timestamp))
	found, err := c.get(ctx, requestID, path, &acc)
	if err != nil || !found {
		return nil, err
	}
	return &acc, nil
}

// GetContractStateByAddressAndSlot fetches a single storage slot's value.
func (c *Client) GetContractStateByAddressAndSlot(ctx context.Context, requestID, address, slot string) (*ContractState, error) {
	var page struct {
		State []ContractState `json:"state"`
	}
	path := fmt.Sprintf("/api/v1/contracts/%s/state?slot=%s", address, url.QueryEscape(slot))
	found, err := c.get(ctx, requestID, path, &page)
	if err != nil || !found || len(page.State) == 0 {
		return nil, err
	}
	return &page.State[0], nil
}

// GetContractState fetches all storage slots for a contract.
func (c *Client) GetContractState(ctx context.Context, requestID, address string) ([]ContractState, error) {
	var page struct {
		State []ContractState `json:"state"`
	}
	found, err := c.get(ctx, requestID, "/api/v1/contracts/"+address+"/state", &page)
	if err != nil || !found {
		return nil, err
	}
	return page.State, nil
}

// GetNetworkFees fetches the current fee schedule, optionally at a
// historical timestamp.
func (c *Client) GetNetworkFees(ctx context.Context, requestID, timestamp string) (*NetworkFees, error) {
	path := "/api/v1/network/fees"
	if timestamp != "" {
		path += "?timestamp=" + url.QueryEscape(timestamp)
	}
	var fees NetworkFees
	found, err := c.get(ctx, requestID, path, &fees)
	if err != nil || !found {
		return nil, err
	}
	return &fees, nil
}

// GetNetworkExchangeRate fetches the current tinybar/USD exchange rate.
func (c *Client) GetNetworkExchangeRate(ctx context.Context, requestID string) (*ExchangeRate, error) {
	var rate ExchangeRate
	found, err := c.get(ctx, requestID, "/api/v1/network/exchangerate", &rate)
	if err != nil || !found {
		return nil, err
	}
	return &rate, nil
}

// CallRequest is the payload for the contract-call and estimate-gas
// endpoints.
type CallRequest struct {
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
	Data     string `json:"data,omitempty"`
	Gas      int64  `json:"gas,omitempty"`
	GasPrice string `json:"gasPrice,omitempty"`
	Value    int64  `json:"value,omitempty"`
	Block    string `json:"block,omitempty"`
	Estimate bool   `json:"estimate,omitempty"`
}

// CallResponse is the mirror's response to a contract-call or
// estimate-gas request.
type CallResponse struct {
	Result    string `json:"result"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	StatusCode   int    `json:"statusCode,omitempty"`
}

// Call issues a contract-call (eth_call) request against the mirror.
func (c *Client) Call(ctx context.Context, requestID string, req CallRequest) (*CallResponse, error) {
	req.Estimate = false
	var resp CallResponse
	found, err := c.post(ctx, requestID, "/api/v1/contracts/call", req, &resp)
	if err != nil || !found {
		return nil, err
	}
	return &resp, nil
}

// EstimateGas issues an estimate=true contract-call request.
func (c *Client) EstimateGas(ctx context.Context, requestID string, req CallRequest) (*CallResponse, error) {
	req.Estimate = true
	var resp CallResponse
	found, err := c.post(ctx, requestID, "/api/v1/contracts/call", req, &resp)
	if err != nil || !found {
		return nil, err
	}
	return &resp, nil
}

// ResolveEntityType determines whether address is a contract, token or
// plain account, optionally as of a historical timestamp, by probing the
// appropriate endpoints in the given candidate order.
func (c *Client) ResolveEntityType(ctx context.Context, requestID, address string, candidates []EntityType, timestamp string) (*ResolvedEntity, error) {
	for _, kind := range candidates {
		switch kind {
		case EntityContract:
			var contract ContractSummary
			found, err := c.get(ctx, requestID, "/api/v1/contracts/"+address, &contract)
			if err != nil {
				return nil, err
			}
			if found {
				return &ResolvedEntity{Type: EntityContract, Entity: &contract}, nil
			}
		case EntityToken:
			var token TokenSummary
			found, err := c.get(ctx, requestID, "/api/v1/tokens/"+address, &token)
			if err != nil {
				return nil, err
			}
			if found {
				return &ResolvedEntity{Type: EntityToken, Entity: &token}, nil
			}
		case EntityAccount:
			path := "/api/v1/accounts/" + address
			if timestamp != "" {
				path += "?timestamp=" + url.QueryEscape(timestamp)
			}
			acc, err := func() (*Account, error) {
				var a Account
				found, err := c.get(ctx, requestID, path, &a)
				if err != nil || !found {
					return nil, err
				}
				return &a, nil
			}()
			if err != nil {
				return nil, err
			}
			if acc != nil {
				return &ResolvedEntity{Type: EntityAccount, Entity: acc}, nil
			}
		}
	}
	return nil, nil
}
