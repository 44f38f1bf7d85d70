/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package testmodels holds the entity families shared by docrepo's tests.
package testmodels

import (
	"github.com/go-openapi/strfmt"

	"github.com/suparena/docrepo/storagemodels"
)

// Activity is the auditable test family: a BaseActivity supertype with
// Call and Meeting subtypes sharing one collection.
type Activity interface {
	storagemodels.Auditable
}

// BaseActivity is the family supertype.
type BaseActivity struct {
	storagemodels.DocumentBase
	storagemodels.AuditInfo

	// Title of the activity.
	// Required: true
	Title *string `dynamodbav:"Title,omitempty" json:"Title,omitempty"`

	// Free-form notes.
	Notes *string `dynamodbav:"Notes,omitempty" json:"Notes,omitempty"`

	// Timestamp when the activity was created.
	// Format: date-time
	CreatedAt *strfmt.DateTime `dynamodbav:"CreatedAt,omitempty" json:"CreatedAt,omitempty"`
}

func (a *BaseActivity) EntityKind() string { return "Activity" }

// CallActivity is a phone-call specialization.
type CallActivity struct {
	BaseActivity

	// Number dialed.
	// Required: true
	PhoneNumber *string `dynamodbav:"PhoneNumber,omitempty" json:"PhoneNumber,omitempty"`

	// Call length in seconds.
	DurationSeconds *int64 `dynamodbav:"DurationSeconds,omitempty" json:"DurationSeconds,omitempty"`
}

func (a *CallActivity) EntityKind() string { return "Call" }

// MeetingActivity is an in-person meeting specialization.
type MeetingActivity struct {
	BaseActivity

	// Where the meeting takes place.
	Location *string `dynamodbav:"Location,omitempty" json:"Location,omitempty"`

	// Attendee names.
	Attendees []string `dynamodbav:"Attendees,omitempty" json:"Attendees,omitempty"`
}

func (a *MeetingActivity) EntityKind() string { return "Meeting" }
