package tagengine

import "strings"

// FailureKind classifies an engine write failure for the fallback logic.
type FailureKind int

const (
	// FailureGeneric is any failure without a recognized corruption signature.
	FailureGeneric FailureKind = iota
	// FailureBadOffset indicates a corrupt offset in the file's primary
	// metadata block.
	FailureBadOffset
	// FailureMakerNotes indicates the vendor-proprietary maker-note block
	// caused the failure. Some camera-written files carry maker notes that
	// break structured writes.
	FailureMakerNotes
)

// The engine reports errors as human-readable text, so classification works
// on substrings of the message. Keeping the matching here, in one place,
// means a change of wording in the engine touches only this file.
const (
	signatureBadOffset  = "bad offset"
	signatureMakerNotes = "makernotes"
)

// Classify maps an engine error to a FailureKind by inspecting its text.
// A nil error classifies as FailureGeneric.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureGeneric
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, signatureBadOffset):
		return FailureBadOffset
	case strings.Contains(msg, signatureMakerNotes):
		return FailureMakerNotes
	default:
		return FailureGeneric
	}
}
