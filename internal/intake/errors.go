package intake

// Sentinel errors for draft and attachment handling.
var (
	ErrEmptyQuestion   = sentinel("question is required")
	ErrSlotTaken       = sentinel("an attachment of this type is already added")
	ErrUnsupportedType = sentinel("unsupported attachment type")
	ErrSubmitInFlight  = sentinel("a submission is already in progress")
)

type sentinel string

func (e sentinel) Error() string { return string(e) }
