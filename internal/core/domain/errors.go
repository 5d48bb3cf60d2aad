package domain

import "errors"

var (
	ErrPatientNotFound = errors.New("patient not found")
	// ErrLMPNotRecorded is returned when progress is requested for a patient without an LMP
	ErrLMPNotRecorded = errors.New("last menstrual period not recorded")
	ErrInvalidMonth   = errors.New("invalid calendar month")
)
