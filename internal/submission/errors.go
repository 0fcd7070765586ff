package submission

import (
	"errors"
	"fmt"
)

// ErrStoreFault marks every failure raised by the relational store while a
// submission is being written, including context cancellation.
var ErrStoreFault = errors.New("store fault")

const stepBeginTx = "begin transaction"

// StepError reports the state the sequence had reached when the store
// failed and the operation that failed. It matches both ErrStoreFault and the
// underlying driver error.
type StepError struct {
	State State
	Step  string
	Err   error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", ErrStoreFault, e.Step, e.Err)
}

func (e *StepError) Unwrap() []error {
	return []error{ErrStoreFault, e.Err}
}

func storeFault(state State, err error) error {
	return &StepError{State: state, Step: state.step(), Err: err}
}
