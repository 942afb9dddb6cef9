// Package form is the contact edit form: it tracks whether a new contact or
// an existing one is being edited, and turns the user's input into a payload
// for the API.
package form

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pdxmph/addressbook/internal/apperror"
	"github.com/pdxmph/addressbook/internal/contact"
	"github.com/pdxmph/addressbook/internal/email"
	"github.com/pdxmph/addressbook/internal/validate"
)

// Validation messages
const (
	NameRequired  = "First name and last name are required"
	EmailsInvalid = "All emails must be valid (e.g. name@example.com)."
)

// Error fields
const (
	FieldName  = "name"
	FieldEmail = "email"
)

var messages = map[string]string{
	"Draft.FirstName.required":  NameRequired,
	"Draft.LastName.required":   NameRequired,
	"Draft.Emails.contactemail": EmailsInvalid,
}

var fields = map[string]string{
	"FirstName": FieldName,
	"LastName":  FieldName,
	"Emails":    FieldEmail,
}

// ModeKind tells a new contact apart from an existing one
type ModeKind int

const (
	ModeNew ModeKind = iota
	ModeEditing
)

// Mode is the form's edit mode. ID is set only when Kind is ModeEditing.
type Mode struct {
	Kind ModeKind
	ID   string
}

// NewMode returns the new-contact mode
func NewMode() Mode { return Mode{Kind: ModeNew} }

// EditingMode returns the mode for editing the contact with the given id
func EditingMode(id string) Mode { return Mode{Kind: ModeEditing, ID: id} }

// IsNew reports whether the form is creating a contact
func (m Mode) IsNew() bool { return m.Kind == ModeNew }

func (m Mode) String() string {
	if m.IsNew() {
		return "new"
	}
	return "editing(" + m.ID + ")"
}

// Draft is what the user has entered, ready for validation
type Draft struct {
	FirstName string   `validate:"required"`
	LastName  string   `validate:"required"`
	Emails    []string `validate:"dive,contactemail"`
}

// Controller owns the form fields and edit mode. Email state lives in the
// email manager it was constructed with.
type Controller struct {
	emails    *email.Manager
	validate  *validator.Validate
	mode      Mode
	firstName string
	lastName  string
}

// New creates a form controller in new-contact mode
func New(emails *email.Manager, v *validator.Validate) *Controller {
	return &Controller{emails: emails, validate: v, mode: NewMode()}
}

// Emails returns the email manager backing the form
func (c *Controller) Emails() *email.Manager {
	return c.emails
}

// Mode returns the current edit mode
func (c *Controller) Mode() Mode {
	return c.mode
}

// FirstName returns the first name field
func (c *Controller) FirstName() string { return c.firstName }

// LastName returns the last name field
func (c *Controller) LastName() string { return c.lastName }

// SetFirstName sets the first name field
func (c *Controller) SetFirstName(s string) { c.firstName = s }

// SetLastName sets the last name field
func (c *Controller) SetLastName(s string) { c.lastName = s }

// Load fills the form from ct, or clears it for a new contact when ct is nil
func (c *Controller) Load(ct *contact.Contact) {
	c.emails.Reset()

	if ct == nil {
		c.mode = NewMode()
		c.firstName, c.lastName = "", ""
		c.emails.SetWorkingSet(nil)
		return
	}

	normalized := contact.Normalize(*ct)
	c.mode = EditingMode(normalized.ID)
	c.firstName, c.lastName = validate.ParseName(normalized.Name)
	c.emails.SetWorkingSet(normalized.Emails)
}

// CollectDraft reads the form. An address still sitting in the pending input
// is included so a forgotten Enter does not lose it.
func (c *Controller) CollectDraft() Draft {
	emails := c.emails.Emails()
	if pending := strings.TrimSpace(c.emails.PendingInput()); pending != "" && !c.emails.Contains(pending) {
		emails = append(emails, pending)
	}

	return Draft{
		FirstName: strings.TrimSpace(c.firstName),
		LastName:  strings.TrimSpace(c.lastName),
		Emails:    emails,
	}
}

// Validate checks d and returns the first problem as a validation error,
// or nil. Zero emails is fine; any email present must be valid.
func (c *Controller) Validate(d Draft) *apperror.Error {
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)

	errs := validate.FieldErrors(c.validate.Struct(d), messages)
	if len(errs) == 0 {
		return nil
	}

	field, ok := fields[errs[0].Field]
	if !ok {
		field = FieldName
	}
	return apperror.NewValidation(field, errs[0].Message)
}

// ToPayload builds the create/update body. The legacy email mirrors the
// first address; phone and address are sent empty for older server schemas.
func ToPayload(d Draft) contact.Payload {
	emails := d.Emails
	if emails == nil {
		emails = []string{}
	}

	primary := ""
	if len(emails) > 0 {
		primary = emails[0]
	}

	return contact.Payload{
		Name:    validate.FormatName(d.FirstName, d.LastName),
		Email:   primary,
		Emails:  emails,
		Phone:   "",
		Address: "",
	}
}
