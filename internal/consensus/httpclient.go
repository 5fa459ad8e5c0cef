package consensus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"cosmossdk.io/log"
)

// HTTPClient is a thin, generic HTTP binding of the Client contract
// against a configured endpoint. The consensus-network SDK's actual wire
// protocol is out of scope (the collaborator is treated as opaque), so
// this issues plain JSON POSTs and decodes a JSON response rather than
// embedding a concrete SDK, following the same "typed REST client over an
// opaque collaborator" shape internal/mirror uses for its own backend.
type HTTPClient struct {
	endpoint string
	http     *http.Client
	logger   log.Logger
}

func NewHTTPClient(endpoint string, httpClient *http.Client, logger log.Logger) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &HTTPClient{endpoint: endpoint, http: httpClient, logger: logger}
}

type submitTransactionRequest struct {
	SignedTxBytes []byte `json:"signedTxBytes"`
}

type submitTransactionResponse struct {
	TransactionID string `json:"transactionId"`
	Submitted     bool   `json:"submitted"`
}

func (c *HTTPClient) SubmitTransaction(ctx context.Context, signedTxBytes []byte) (SubmitResult, error) {
	var resp submitTransactionResponse
	if err := c.post(ctx, "/transactions", submitTransactionRequest{SignedTxBytes: signedTxBytes}, &resp); err != nil {
		return SubmitResult{}, err
	}
	return SubmitResult{TransactionID: resp.TransactionID, Submitted: resp.Submitted}, nil
}

type uploadFileRequest struct {
	Bytecode []byte `json:"bytecode"`
}

type uploadFileResponse struct {
	FileID string `json:"fileId"`
}

func (c *HTTPClient) UploadFile(ctx context.Context, bytecode []byte) (string, error) {
	var resp uploadFileResponse
	if err := c.post(ctx, "/files", uploadFileRequest{Bytecode: bytecode}, &resp); err != nil {
		return "", err
	}
	return resp.FileID, nil
}

// DeleteFile is best-effort and fire-and-forget: failures are logged, not
// propagated, per the Client contract.
func (c *HTTPClient) DeleteFile(ctx context.Context, fileID string) {
	if err := c.post(ctx, "/files/"+fileID+"/delete", nil, nil); err != nil {
		c.logger.Debug("consensus file deletion failed", "fileID", fileID, "error", err)
	}
}

type callRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Data       []byte `json:"data"`
	Gas        uint64 `json:"gas"`
	BlockParam string `json:"blockParam"`
}

type callResponse struct {
	Result []byte `json:"result"`
}

func (c *HTTPClient) Call(ctx context.Context, from, to string, data []byte, gas uint64, blockParam string) ([]byte, error) {
	var resp callResponse
	req := callRequest{From: from, To: to, Data: data, Gas: gas, BlockParam: blockParam}
	if err := c.post(ctx, "/contracts/call", req, &resp); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

func (c *HTTPClient) post(ctx context.Context, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("consensus collaborator: %s returned %d", path, resp.StatusCode)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	return json.Unmarshal(respBody, out)
}
