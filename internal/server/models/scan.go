package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultScanType подставляется, если тип снимка не передан.
const DefaultScanType = "RGB"

// Scan - метаданные загруженного снимка. Запись неизменяема после создания.
//
// UploadedBy - слабая ссылка на users.id, может быть nil.
// UploadedByEmail заполняется только при чтении (LEFT JOIN users).
type Scan struct {
	ID              uuid.UUID
	PatientName     string
	PatientID       string
	ScanType        string
	Region          string
	ImageURL        string
	UploadDate      time.Time
	UploadedBy      *uuid.UUID
	UploadedByEmail *string
}
