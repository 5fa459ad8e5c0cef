// Package consensus defines the opaque "submit signed transaction, get an
// id" client contract for the consensus-network collaborator (spec.md
// §1 Non-goals: "the consensus-network SDK" is out of scope, "treated as
// an opaque... client"). Only the interface this gateway consumes is
// specified; no concrete SDK wiring belongs here.
package consensus

import (
	"context"
)

// SubmitResult is returned by Client.SubmitTransaction.
type SubmitResult struct {
	// TransactionID is the collaborator-assigned identifier, present
	// whenever the submission reached the network (even under a
	// partial-failure timeout).
	TransactionID string
	// Submitted reports whether the transaction is known to have reached
	// the network, independent of whether the call itself returned an
	// error (spec.md §4.6.10 step 3: "may return txSubmitted=true with a
	// dropped-connection or timeout error").
	Submitted bool
}

// Client is the consensus collaborator's client surface as consumed by
// this gateway.
type Client interface {
	// SubmitTransaction submits a parsed, prechecked transaction and
	// returns its assigned id. A non-nil error may still carry a
	// SubmitResult with Submitted=true.
	SubmitTransaction(ctx context.Context, signedTxBytes []byte) (SubmitResult, error)

	// UploadFile uploads large contract-creation bytecode ahead of a
	// creation transaction that exceeds the inline size limit (spec.md
	// §4.6.10 "Bytecode side effect"), returning a handle the submitter
	// references in the creation transaction.
	UploadFile(ctx context.Context, bytecode []byte) (fileID string, err error)

	// DeleteFile schedules the best-effort, fire-and-forget deletion of a
	// previously uploaded file, called on both the success and failure
	// paths of a bytecode upload.
	DeleteFile(ctx context.Context, fileID string)

	// Call executes tx synchronously against the consensus collaborator
	// when the gateway is configured to route eth_call there instead of
	// the mirror's contract-call endpoint.
	Call(ctx context.Context, from, to string, data []byte, gas uint64, blockParam string) ([]byte, error)
}
