// internal/manage/flow.go
package manage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/soukcraft/soukcraft-web/internal/apiclient"
	"github.com/soukcraft/soukcraft-web/internal/models"
	"github.com/soukcraft/soukcraft-web/internal/validation"
)

// successDisplayDuration is how long the update banner stays up.
const successDisplayDuration = 3 * time.Second

var (
	// ErrNotEditing fires when an edit operation is attempted before a
	// successful lookup. Destructive calls are unreachable in Lookup.
	ErrNotEditing = errors.New("no ad loaded")

	// ErrAlreadyEditing fires on a second lookup within the same flow;
	// changing the target ad requires a fresh navigation to the page.
	ErrAlreadyEditing = errors.New("ad already loaded")

	// ErrFlowClosed marks the flow as navigated-away-from; late responses
	// and further operations are discarded rather than mutating state.
	ErrFlowClosed = errors.New("manage flow closed")

	// ErrValidation signals that the draft failed local checks and no
	// network call was made. Details are in FieldErrors.
	ErrValidation = errors.New("draft failed validation")

	// ErrUnknownField guards UpdateField against names outside the draft.
	ErrUnknownField = errors.New("unknown draft field")
)

// State is the flow's position: an explicit tag rather than a nullable
// draft, so edit and delete are unrepresentable before a loaded ad.
type State int

const (
	StateLookup State = iota
	StateEditing
)

// PendingImage is a candidate replacement picked but not yet uploaded.
type PendingImage struct {
	Filename string
	Data     []byte
}

// Draft is the in-memory editable copy of an ad. Price is kept as the raw
// string the user typed; validation performs the numeric comparison.
type Draft struct {
	Title        string
	Description  string
	Price        string
	Category     models.Category
	PhoneNumber  string
	ImagePath    string
	PendingImage *PendingImage
}

// AdService is the slice of the upstream client the flow depends on.
type AdService interface {
	AdByCode(ctx context.Context, code string) (*models.Ad, error)
	UpdateAd(ctx context.Context, code string, upd apiclient.AdUpdate) (*models.Ad, error)
	DeleteAd(ctx context.Context, code string) error
}

// Flow drives one ad-management session: look an ad up by access code, edit
// the draft locally, then update or delete against the upstream. The access
// code lives only here, in memory, for the lifetime of the flow.
type Flow struct {
	mu sync.Mutex

	api AdService
	now func() time.Time

	state       State
	code        string // access code of the loaded ad
	enteredCode string // last code typed, kept for retry on failed lookup

	draft       Draft
	fieldErrors map[string]string
	errMsg      string

	successMsg   string
	successUntil time.Time

	closed bool
}

func NewFlow(api AdService) *Flow {
	return &Flow{
		api:         api,
		now:         time.Now,
		state:       StateLookup,
		fieldErrors: make(map[string]string),
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// EnteredCode returns the last access code the user typed, so a failed
// lookup can re-render the form with it intact.
func (f *Flow) EnteredCode() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enteredCode
}

// Draft returns a copy of the current draft.
func (f *Flow) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// FieldErrors returns a copy of the field->message map from the last
// submit attempt.
func (f *Flow) FieldErrors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[string]string, len(f.fieldErrors))
	for field, msg := range f.fieldErrors {
		errs[field] = msg
	}
	return errs
}

func (f *Flow) ErrorMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg
}

// SuccessMessage returns the transient update banner; it clears itself
// three seconds after a successful update.
func (f *Flow) SuccessMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.successMsg != "" && f.now().Before(f.successUntil) {
		return f.successMsg
	}
	return ""
}

// Closed reports whether the flow was terminated by delete or navigation.
func (f *Flow) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close marks the flow abandoned. Any in-flight response is discarded when
// it lands instead of mutating the dead session.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// FetchByCode looks the ad up and, on success, transitions to Editing with
// the returned ad as the draft. On failure the flow stays in Lookup with a
// user-visible error and the entered code retained for retry.
func (f *Flow) FetchByCode(ctx context.Context, code string) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	if f.state == StateEditing {
		f.mu.Unlock()
		return ErrAlreadyEditing
	}
	f.enteredCode = code
	f.mu.Unlock()

	ad, err := f.api.AdByCode(ctx, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFlowClosed
	}

	if err != nil {
		f.errMsg = "Ad not found. Please check your access code."
		return fmt.Errorf("fetch ad by code: %w", err)
	}

	f.state = StateEditing
	f.code = code
	f.draft = Draft{
		Title:       ad.Title,
		Description: ad.Description,
		Price:       strconv.FormatFloat(ad.Price, 'f', -1, 64),
		Category:    ad.Category,
		PhoneNumber: ad.PhoneNumber,
		ImagePath:   ad.ImagePath,
	}
	f.fieldErrors = make(map[string]string)
	f.errMsg = ""
	return nil
}

// UpdateField mutates one draft field and clears that field's previous
// validation error. The clearing is optimistic: no re-validation happens
// until the next submit attempt.
func (f *Flow) UpdateField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFlowClosed
	}
	if f.state != StateEditing {
		return ErrNotEditing
	}

	switch name {
	case "title":
		f.draft.Title = value
	case "description":
		f.draft.Description = value
	case "price":
		f.draft.Price = value
	case "category":
		f.draft.Category = models.Category(value)
	case "phone_number":
		f.draft.PhoneNumber = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	delete(f.fieldErrors, name)
	return nil
}

// SetPendingImage stores a candidate replacement image on the draft
// without uploading it. It replaces the server-side image on the next
// successful update; never set means "keep existing image".
func (f *Flow) SetPendingImage(filename string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return ErrFlowClosed
	}
	if f.state != StateEditing {
		return ErrNotEditing
	}

	f.draft.PendingImage = &PendingImage{Filename: filename, Data: data}
	return nil
}

// SubmitUpdate validates the draft and, only if every check passes, issues
// the authenticated multipart update. Validation failure surfaces the full
// field->message map and performs no network call. Upstream failure leaves
// the draft exactly as entered for manual retry.
func (f *Flow) SubmitUpdate(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	if f.state != StateEditing {
		f.mu.Unlock()
		return ErrNotEditing
	}

	errs := validation.ValidateAd(validation.AdInput{
		Title:       f.draft.Title,
		Description: f.draft.Description,
		Price:       f.draft.Price,
		Category:    f.draft.Category,
		PhoneNumber: f.draft.PhoneNumber,
	})
	if len(errs) > 0 {
		f.fieldErrors = errs
		f.mu.Unlock()
		return ErrValidation
	}
	f.fieldErrors = make(map[string]string)

	code := f.code
	upd := apiclient.AdUpdate{
		Title:         f.draft.Title,
		Description:   f.draft.Description,
		Price:         f.draft.Price,
		Category:      f.draft.Category,
		PhoneNumber:   f.draft.PhoneNumber,
		ExistingImage: f.draft.ImagePath,
	}
	if img := f.draft.PendingImage; img != nil {
		upd.NewImage = &apiclient.Upload{Filename: img.Filename, Data: img.Data}
	}
	f.mu.Unlock()

	updated, err := f.api.UpdateAd(ctx, code, upd)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFlowClosed
	}

	if err != nil {
		f.errMsg = "Update failed. Please try again."
		f.successMsg = ""
		return fmt.Errorf("update ad: %w", err)
	}

	if updated != nil && updated.ImagePath != "" {
		f.draft.ImagePath = updated.ImagePath
	}
	f.draft.PendingImage = nil
	f.errMsg = ""
	f.successMsg = "Ad updated successfully!"
	f.successUntil = f.now().Add(successDisplayDuration)
	return nil
}

// DeleteAd issues the irreversible authenticated delete. It is unreachable
// without a prior successful FetchByCode; the confirmation step is gated by
// the caller. Success closes the flow; failure keeps the ad and the
// Editing state intact.
func (f *Flow) DeleteAd(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrFlowClosed
	}
	if f.state != StateEditing {
		f.mu.Unlock()
		return ErrNotEditing
	}
	code := f.code
	f.mu.Unlock()

	err := f.api.DeleteAd(ctx, code)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFlowClosed
	}

	if err != nil {
		f.errMsg = "Delete failed. Please try again."
		return fmt.Errorf("delete ad: %w", err)
	}

	f.closed = true
	return nil
}
