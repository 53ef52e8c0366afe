package model

import (
	"github.com/google/uuid"
)

type BedType string

const (
	BedTypeGeneral   BedType = "General"
	BedTypeICU       BedType = "ICU"
	BedTypeEmergency BedType = "Emergency"
)

func (t BedType) Valid() bool {
	switch t {
	case BedTypeGeneral, BedTypeICU, BedTypeEmergency:
		return true
	}
	return false
}

type BedStatus string

const (
	BedStatusAvailable   BedStatus = "Available"
	BedStatusOccupied    BedStatus = "Occupied"
	BedStatusMaintenance BedStatus = "Maintenance"
)

func (s BedStatus) Valid() bool {
	switch s {
	case BedStatusAvailable, BedStatusOccupied, BedStatusMaintenance:
		return true
	}
	return false
}

// Bed is a physical bed. PatientID points at the occupying patient; the
// patient's BedID must point back while the bed is Occupied.
type Bed struct {
	Base
	BedNumber string     `json:"bed_number" db:"bed_number"`
	Ward      string     `json:"ward" db:"ward"`
	Type      BedType    `json:"type" db:"type"`
	Status    BedStatus  `json:"status" db:"status"`
	PatientID *uuid.UUID `json:"patient_id" db:"patient_id"`
}

// BedListItem is a bed with the occupying patient's name resolved.
type BedListItem struct {
	Bed
	PatientName *string `json:"patient_name,omitempty" db:"patient_name"`
}

type CreateBedRequest struct {
	BedNumber string    `json:"bed_number" binding:"required"`
	Ward      string    `json:"ward" binding:"required"`
	Type      BedType   `json:"type" binding:"omitempty,bedtype"`
	Status    BedStatus `json:"status" binding:"omitempty,bedstatus"`
}

type UpdateBedStatusRequest struct {
	Status BedStatus `json:"status" binding:"required,bedstatus"`
}

// WardSummary counts beds per status within one ward.
type WardSummary struct {
	Ward        string `json:"ward"`
	Total       int    `json:"total"`
	Available   int    `json:"available"`
	Occupied    int    `json:"occupied"`
	Maintenance int    `json:"maintenance"`
}
