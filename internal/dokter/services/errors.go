package services

import "errors"

var (
	ErrNoPatientsWaiting  = errors.New("no patients waiting in the queue")
	ErrNoCurrentPatient   = errors.New("no current patient to repeat the call for")
	ErrCallNextDisabled   = errors.New("call next is disabled until the current patient times out")
	ErrRepeatInProgress   = errors.New("repeat call already in progress")
	ErrAlreadyCompleted   = errors.New("queue entry already completed")
	ErrNoOpenConsultation = errors.New("no consultation form is open")
	ErrRowOutOfRange      = errors.New("row index out of range")
	ErrInvalidDraft       = errors.New("consultation form is invalid")
)
