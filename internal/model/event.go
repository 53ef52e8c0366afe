package model

import (
	"github.com/google/uuid"
)

// Change notification event names, as seen by viewers.
const (
	EventBedsRefresh         = "beds:refresh"
	EventPatientsAdmitted    = "patients:admitted"
	EventPatientsDischarged  = "patients:discharged"
	EventPatientsTransferred = "patients:transferred"
)

type AdmittedEvent struct {
	Patient *Patient `json:"patient"`
	Bed     *Bed     `json:"bed"`
}

type DischargedEvent struct {
	PatientID uuid.UUID `json:"patientId"`
	Bed       *Bed      `json:"bed"`
}

type TransferredEvent struct {
	Patient *Patient `json:"patient"`
	NewBed  *Bed     `json:"newBed"`
}
