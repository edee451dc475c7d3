package util

import (
	"errors"
	"fmt"
)

// Error codes for the ticket workflow. Every rejected action maps to one of
// these; the interaction router turns them into ephemeral user notices.
const (
	CodeConfigIncomplete = "CONFIG_INCOMPLETE"
	CodeDuplicateTicket  = "DUPLICATE_TICKET"
	CodeAlreadyClaimed   = "ALREADY_CLAIMED"
	CodeAlreadyEscalated = "ALREADY_ESCALATED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// UserMessage returns the text shown to the acting user.
func (e *DomainError) UserMessage() string {
	return e.Message
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, Details: details}
}

func NewConfigIncomplete() error {
	return NewDomainError(CodeConfigIncomplete,
		"The ticket system is not fully configured. An administrator must complete setup first.", nil)
}

func NewDuplicateTicket(channelID string) error {
	return NewDomainError(CodeDuplicateTicket,
		fmt.Sprintf("You already have an open ticket <#%s>", channelID),
		map[string]any{"channel_id": channelID})
}

func NewAlreadyClaimed(claimantID string) error {
	return NewDomainError(CodeAlreadyClaimed,
		fmt.Sprintf("This ticket is already claimed by <@%s>.", claimantID),
		map[string]any{"claimant_id": claimantID})
}

func NewAlreadyEscalated() error {
	return NewDomainError(CodeAlreadyEscalated, "This ticket has already been escalated.", nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, nil)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s could not be found.", resource), nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:    CodeInternal,
		Message: "Something went wrong while processing your request. Please try again.",
		Err:     err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:    CodeInternal,
		Message: "Something went wrong while processing your request. Please try again.",
		Err:     err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == code
}
