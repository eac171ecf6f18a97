package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxzi/tweetsift/internal/web/models"
)

func TestEmailSubmit(t *testing.T) {
	tests := []struct {
		name       string
		fullName   string
		email      string
		backendErr error
		wantErrors []string
		wantCalls  int
		wantSaved  bool
		wantFailed bool
	}{
		{"both invalid", " ", "nope", nil, []string{"name", "email"}, 0, false, false},
		{"invalid email only", "Ana", "ana@", nil, []string{"email"}, 0, false, false},
		{"blank name only", "", "ana@example.com", nil, []string{"name"}, 0, false, false},
		{"saved", "Ana", "ana@example.com", nil, nil, 1, true, false},
		{"backend failure", "Ana", "ana@example.com", errors.New("boom"), nil, 1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{subErr: tt.backendErr}
			f := NewEmailFlow(fb, NewPacer(0), testLogger())

			form, err := f.Submit(context.Background(), "h1", tt.fullName, tt.email)
			require.NoError(t, err)

			assert.Len(t, form.Errors, len(tt.wantErrors))
			for _, field := range tt.wantErrors {
				assert.True(t, form.Errors.Has(field), field)
			}
			assert.Len(t, fb.subs, tt.wantCalls)
			assert.Equal(t, tt.wantSaved, form.Saved)
			assert.Equal(t, tt.wantFailed, form.Failed)
			assert.False(t, form.Saved && form.Failed)
		})
	}
}

func TestEmailSubmitClearsFieldsOnSuccess(t *testing.T) {
	fb := &fakeBackend{}
	f := NewEmailFlow(fb, NewPacer(0), testLogger())

	form, err := f.Submit(context.Background(), "h1", "Ana", "ana@example.com")
	require.NoError(t, err)

	assert.Empty(t, form.Name)
	assert.Empty(t, form.Email)
	assert.Equal(t, []models.EmailSubscription{{Name: "Ana", Email: "ana@example.com", Search: "h1"}}, fb.subs)
}

func TestEmailSubmitKeepsFieldsOnFailure(t *testing.T) {
	fb := &fakeBackend{subErr: errors.New("boom")}
	f := NewEmailFlow(fb, NewPacer(0), testLogger())

	form, err := f.Submit(context.Background(), "h1", "Ana", "ana@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Ana", form.Name)
	assert.Equal(t, "ana@example.com", form.Email)
}
