package sockjs

// CloseReason is a SockJS close code/reason pair, as sent in a close
// frame: c[code,"reason"]. The set of reasons is closed.
type CloseReason struct {
	Code   int
	Reason string
}

var (
	// GoAway is the generic orderly-shutdown reason.
	GoAway = CloseReason{Code: 3000, Reason: "Go away!"}
	// StillOpen evicts a duplicate attach; the incumbent request is untouched.
	StillOpen = CloseReason{Code: 2010, Reason: "Another connection still open"}
)

func (r CloseReason) asSlice() [2]interface{} {
	return [2]interface{}{r.Code, r.Reason}
}
