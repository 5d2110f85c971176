package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	ErrKindNotFound         ErrorKind = "NOT_FOUND"
	ErrKindConflict         ErrorKind = "CONFLICT"
	ErrKindPermissionDenied ErrorKind = "PERMISSION_DENIED"
)

type ErrorCode string

const (
	CodePodNotFound         ErrorCode = "POD_NOT_FOUND"
	CodeApplicationNotFound ErrorCode = "APPLICATION_NOT_FOUND"
	CodeAlreadyApplied      ErrorCode = "ALREADY_APPLIED"
	CodeAlreadyMember       ErrorCode = "ALREADY_MEMBER"
	CodeAlreadyReviewed     ErrorCode = "ALREADY_REVIEWED"
	CodePodFull             ErrorCode = "POD_FULL"
	CodeInvalidPodStatus    ErrorCode = "INVALID_POD_STATUS"
	CodeNotPodHost          ErrorCode = "NOT_POD_HOST"
	CodeNoPodAccess         ErrorCode = "NO_POD_ACCESS"
)

// RecruitmentError is the closed set of business-rule violations raised by
// the recruitment workflow. None of these are transient: the HTTP layer maps
// Kind to a client-error status and never retries.
type RecruitmentError struct {
	Kind          ErrorKind `json:"kind"`
	Code          ErrorCode `json:"code"`
	PodID         int32     `json:"pod_id,omitempty"`
	ApplicationID int32     `json:"application_id,omitempty"`
	UserID        int32     `json:"user_id,omitempty"`
	Occupancy     int32     `json:"occupancy,omitempty"`
	Capacity      int32     `json:"capacity,omitempty"`
	PodStatus     PodStatus `json:"pod_status,omitempty"`
}

func (e *RecruitmentError) Error() string {
	if e.Code == CodePodFull {
		return fmt.Sprintf("%s: pod %d at %d/%d", e.Code, e.PodID, e.Occupancy, e.Capacity)
	}
	return fmt.Sprintf("%s: pod=%d application=%d user=%d", e.Code, e.PodID, e.ApplicationID, e.UserID)
}

func ErrPodNotFound(podID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindNotFound, Code: CodePodNotFound, PodID: podID}
}

func ErrApplicationNotFound(applicationID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindNotFound, Code: CodeApplicationNotFound, ApplicationID: applicationID}
}

func ErrAlreadyApplied(podID, userID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindConflict, Code: CodeAlreadyApplied, PodID: podID, UserID: userID}
}

func ErrAlreadyMember(podID, userID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindConflict, Code: CodeAlreadyMember, PodID: podID, UserID: userID}
}

func ErrAlreadyReviewed(applicationID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindConflict, Code: CodeAlreadyReviewed, ApplicationID: applicationID}
}

func ErrPodFull(podID, occupancy, capacity int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindConflict, Code: CodePodFull, PodID: podID, Occupancy: occupancy, Capacity: capacity}
}

func ErrInvalidPodStatus(podID int32, status PodStatus) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindConflict, Code: CodeInvalidPodStatus, PodID: podID, PodStatus: status}
}

func ErrNotPodHost(podID, userID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindPermissionDenied, Code: CodeNotPodHost, PodID: podID, UserID: userID}
}

func ErrNoPodAccess(podID, userID int32) *RecruitmentError {
	return &RecruitmentError{Kind: ErrKindPermissionDenied, Code: CodeNoPodAccess, PodID: podID, UserID: userID}
}

// IsCode reports whether err is a RecruitmentError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var re *RecruitmentError
	return errors.As(err, &re) && re.Code == code
}
