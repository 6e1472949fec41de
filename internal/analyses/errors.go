package analyses

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "analysis not found" }
