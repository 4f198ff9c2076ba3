package collector

import (
	"fmt"

	"github.com/vainnor/vatsim-scraper/models"
)

// FailureKind classifies why a cycle or flush failed.
type FailureKind string

const (
	KindFetch     FailureKind = "fetch"
	KindReconcile FailureKind = "reconcile"
	KindPersist   FailureKind = "persist"
)

// Failure is the error value returned by Update and Flush. Category is empty
// for fetch failures.
type Failure struct {
	Kind     FailureKind
	Category models.Category
	Err      error
}

func (f *Failure) Error() string {
	if f.Category == "" {
		return fmt.Sprintf("%s failure: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s failure (%s): %v", f.Kind, f.Category, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
