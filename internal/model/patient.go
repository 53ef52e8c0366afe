package model

import (
	"github.com/google/uuid"
)

// Patient is an admission record. It exists only while the patient is
// admitted; discharge deletes it.
type Patient struct {
	Base
	Name    string     `db:"name" json:"name"`
	Age     int        `db:"age" json:"age"`
	Disease string     `db:"disease" json:"disease,omitempty"`
	BedID   *uuid.UUID `db:"bed_id" json:"bed_id"`
}

// PatientWithBed is a patient with the linked bed resolved.
type PatientWithBed struct {
	Patient
	Bed *Bed `json:"bed"`
}

type AdmitRequest struct {
	Name          string  `json:"name" binding:"required"`
	Age           *int    `json:"age" binding:"required,min=0,max=150"`
	Disease       string  `json:"disease"`
	PreferredWard string  `json:"preferredWard"`
	PreferredType BedType `json:"preferredType" binding:"omitempty,bedtype"`
}

type TransferRequest struct {
	TargetWard string  `json:"targetWard"`
	TargetType BedType `json:"targetType" binding:"omitempty,bedtype"`
}

type AdmitResponse struct {
	Patient *Patient `json:"patient"`
	Bed     *Bed     `json:"bed"`
}

type TransferResponse struct {
	Patient *Patient `json:"patient"`
	NewBed  *Bed     `json:"newBed"`
}
