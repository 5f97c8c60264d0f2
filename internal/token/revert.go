package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

// RejectionReason digs a node- or contract-supplied reason out of err.
// A decoded Error(string) revert wins over the bare JSON-RPC message.
func RejectionReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		if reason, ok := decodeRevert(dataErr.ErrorData()); ok {
			return reason, true
		}
	}

	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.Error() != "" {
		return rpcErr.Error(), true
	}

	if errors.Is(err, ErrTransferReverted) {
		return ErrTransferReverted.Error(), true
	}
	return "", false
}

func decodeRevert(data interface{}) (string, bool) {
	s, ok := data.(string)
	if !ok {
		return "", false
	}
	raw, err := hexutil.Decode(s)
	if err != nil {
		return "", false
	}
	reason, err := abi.UnpackRevert(raw)
	if err != nil {
		return "", false
	}
	return reason, true
}
