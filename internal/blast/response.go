// internal/blast/response.go
package blast

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Status is the search state reported by the service.
type Status string

const (
	StatusWaiting Status = "WAITING"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
	StatusUnknown Status = "UNKNOWN" // expired or never existed
)

// Parse failures are distinct error kinds, not empty-string sentinels, so
// callers can pick the right user-facing message.
var (
	ErrNoRID    = errors.New("submission response contains no RID")
	ErrNoStatus = errors.New("status response contains no Status line")
)

// Submission is the parsed result of a Put request.
type Submission struct {
	RID  string
	RTOE time.Duration // provider's completion estimate; 0 when absent
}

var (
	ridRe    = regexp.MustCompile(`RID = (\S+)`)
	rtoeRe   = regexp.MustCompile(`RTOE = (\d+)`)
	statusRe = regexp.MustCompile(`Status=(\S+)`)
)

// ParseSubmission extracts the RID and RTOE lines from a submission response.
// A missing RID is ErrNoRID; a missing RTOE defaults to zero.
func ParseSubmission(body string) (Submission, error) {
	var sub Submission
	m := ridRe.FindStringSubmatch(body)
	if m == nil {
		return sub, ErrNoRID
	}
	sub.RID = m[1]

	if m := rtoeRe.FindStringSubmatch(body); m != nil {
		secs, err := strconv.Atoi(m[1])
		if err == nil {
			sub.RTOE = time.Duration(secs) * time.Second
		}
	}
	return sub, nil
}

// ParseStatus extracts the Status= line from a SearchInfo response. A missing
// or unrecognized status maps to StatusUnknown with a non-nil error.
func ParseStatus(body string) (Status, error) {
	m := statusRe.FindStringSubmatch(body)
	if m == nil {
		return StatusUnknown, ErrNoStatus
	}
	switch s := Status(m[1]); s {
	case StatusWaiting, StatusReady, StatusFailed, StatusUnknown:
		return s, nil
	default:
		return StatusUnknown, fmt.Errorf("unrecognized status %q", m[1])
	}
}
