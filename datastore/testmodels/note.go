/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package testmodels

import "github.com/suparena/docrepo/storagemodels"

// Note is a single-variant, non-audited family: no version counter and
// no writer metadata.
type Note struct {
	storagemodels.DocumentBase

	Body *string `dynamodbav:"Body,omitempty" json:"Body,omitempty"`

	Pinned bool `dynamodbav:"Pinned,omitempty" json:"Pinned,omitempty"`
}

func (n *Note) EntityKind() string { return "Note" }
