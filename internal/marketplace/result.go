package marketplace

import (
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

// OperationResult is the uniform outcome of a mutating marketplace call:
// a success flag plus a human-readable message. Business failures are
// reported here, never as transport errors.
type OperationResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Code    pkgerrors.Code `json:"code,omitempty"`
	ItemID  int64          `json:"item_id,omitempty"`

	err *pkgerrors.Error
}

func succeeded(message string) OperationResult {
	return OperationResult{Success: true, Message: message}
}

func failed(err error) OperationResult {
	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}
	return OperationResult{
		Success: false,
		Message: typed.Message(),
		Code:    typed.Code(),
		err:     typed,
	}
}

// Err returns the typed error behind a failed result, or nil on success.
func (r OperationResult) Err() error {
	if r.Success {
		return nil
	}
	if r.err != nil {
		return r.err
	}
	code := r.Code
	if code == "" {
		code = pkgerrors.CodeInternal
	}
	return pkgerrors.New(code, r.Message)
}
