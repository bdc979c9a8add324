package hours

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// ErrConditionFailed is returned when a conditional write did not apply:
// Create found an existing record, or Confirm found none.
var ErrConditionFailed = errors.New("conditional check failed")

// StoreError is any other DynamoDB failure. Transient errors are worth
// retrying (throttling, server faults, network); the rest are not.
type StoreError struct {
	Op        string
	Code      string
	Transient bool
	Err       error
}

func (e *StoreError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s store error %s: %v", e.Op, kind, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s store error: %v", e.Op, kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsTransient reports whether err is a StoreError that may succeed on retry.
func IsTransient(err error) bool {
	var se *StoreError
	return errors.As(err, &se) && se.Transient
}

var transientCodes = map[string]struct{}{
	"ProvisionedThroughputExceededException": {},
	"RequestLimitExceeded":                   {},
	"InternalServerError":                    {},
	"TransactionConflictException":           {},
	"ThrottlingException":                    {},
	"ServiceUnavailable":                     {},
	"LimitExceededException":                 {},
}

// classify maps an SDK error onto ErrConditionFailed or a *StoreError.
// API errors are transient when their code is in transientCodes or the
// service reports a server fault; errors without an API code never reached
// the service (dispatch, timeout, network) and are transient too.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return ErrConditionFailed
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if code == "ConditionalCheckFailedException" {
			return ErrConditionFailed
		}
		_, transient := transientCodes[code]
		if apiErr.ErrorFault() == smithy.FaultServer {
			transient = true
		}
		return &StoreError{Op: op, Code: code, Transient: transient, Err: err}
	}

	return &StoreError{Op: op, Transient: true, Err: err}
}
