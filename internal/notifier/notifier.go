// Package notifier delivers registration and payment notices. Delivery
// failures are reported but never fail the business operation that triggered
// them.
package notifier

import (
	"github.com/tabor-plzen/camp-api/internal/models"
)

type Notifier interface {
	// NotifyRegistration announces a freshly created registration. The
	// registration carries its camp preloaded.
	NotifyRegistration(reg models.Registration) error
	// NotifyPayment announces a resolved payment attempt.
	NotifyPayment(reg models.Registration, payment models.Payment) error
}

type multiNotifier struct {
	targets []Notifier
}

// Multi fans out to every target and returns the first error, after all
// targets were given a chance to deliver.
func Multi(targets ...Notifier) Notifier {
	return &multiNotifier{targets: targets}
}

func (m *multiNotifier) NotifyRegistration(reg models.Registration) error {
	var first error
	for _, t := range m.targets {
		if err := t.NotifyRegistration(reg); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (m *multiNotifier) NotifyPayment(reg models.Registration, payment models.Payment) error {
	var first error
	for _, t := range m.targets {
		if err := t.NotifyPayment(reg, payment); err != nil && first == nil {
			first = err
		}
	}
	return first
}
