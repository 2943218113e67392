package smoke

import (
	"errors"
	"fmt"

	"github.com/stretchr/testify/assert"
)

// ErrAssertion matches every AssertionError via errors.Is.
var ErrAssertion = errors.New("assertion failed")

// AssertionError is returned when a step's result doesn't match the expected result.
type AssertionError struct {
	Step     string
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("%s: %s: expected %s, actual %s", ErrAssertion, e.Step, e.Expected, e.Actual)
}

// Is supports errors.Is(err, ErrAssertion).
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}

func assertEqual(step string, expected, actual interface{}) error {
	if assert.ObjectsAreEqual(expected, actual) {
		return nil
	}
	return &AssertionError{
		Step:     step,
		Expected: fmt.Sprintf("%+v", expected),
		Actual:   fmt.Sprintf("%+v", actual),
	}
}

func assertTrue(step string, actual bool, expected string) error {
	if actual {
		return nil
	}
	return &AssertionError{Step: step, Expected: expected, Actual: "not so"}
}
