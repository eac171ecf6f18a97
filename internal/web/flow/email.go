package flow

import (
	"context"
	"log/slog"

	"github.com/foxzi/tweetsift/internal/metrics"
	"github.com/foxzi/tweetsift/internal/validate"
	"github.com/foxzi/tweetsift/internal/web/models"
)

// EmailForm is the notification form embedded in a collecting result
type EmailForm struct {
	Name   string
	Email  string
	Errors validate.Errors
	Saved  bool
	Failed bool
}

// NewEmailForm returns an empty form
func NewEmailForm() *EmailForm {
	return &EmailForm{Errors: validate.Errors{}}
}

// EmailFlow validates and submits notification requests
type EmailFlow struct {
	backend Subscriber
	pacer   Pacer
	logger  *slog.Logger
}

// NewEmailFlow creates a new email flow
func NewEmailFlow(b Subscriber, pacer Pacer, logger *slog.Logger) *EmailFlow {
	return &EmailFlow{backend: b, pacer: pacer, logger: logger}
}

// Submit validates name and email independently and, when both pass, asks
// the backend to notify the user about handle. On success the fields are
// cleared. The returned error is only set when ctx ended during the
// display delay.
func (f *EmailFlow) Submit(ctx context.Context, handle models.SearchHandle, name, email string) (*EmailForm, error) {
	form := NewEmailForm()
	form.Name = name
	form.Email = email

	if !validate.DisplayName(name) {
		form.Errors.Add("name", MsgFieldBlank)
	}
	if !validate.EmailAddress(email) {
		form.Errors.Add("email", MsgEmailInvalid)
	}
	if !form.Errors.Empty() {
		metrics.IncSubscriptions("invalid")
		return form, nil
	}

	err := f.backend.SubmitEmailSubscription(ctx, models.EmailSubscription{
		Name:   name,
		Email:  email,
		Search: handle,
	})

	if perr := f.pacer.Settle(ctx); perr != nil {
		return nil, perr
	}

	if err != nil {
		f.logger.Error("failed to save email subscription", "search_id", handle, "error", err)
		form.Failed = true
		metrics.IncSubscriptions("failed")
		return form, nil
	}

	form.Name = ""
	form.Email = ""
	form.Saved = true
	metrics.IncSubscriptions("saved")
	return form, nil
}
