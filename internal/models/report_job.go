package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ReportType names the dataset an export is built from.
type ReportType string

const (
	ReportTypeOccupancy     ReportType = "occupancy"
	ReportTypeRequests      ReportType = "requests"
	ReportTypeRegistrations ReportType = "registrations"
)

// ReportFormat is the file format of a finished export.
type ReportFormat string

const (
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// ContentType returns the MIME type served for the format.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportFormatPDF:
		return "application/pdf"
	case ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// ReportStatus is the lifecycle state of an export job:
// QUEUED -> PROCESSING -> FINISHED | FAILED, with PROCESSING -> QUEUED on retry.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "QUEUED"
	ReportStatusProcessing ReportStatus = "PROCESSING"
	ReportStatusFinished   ReportStatus = "FINISHED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// Settled reports whether no further transition is possible.
func (s ReportStatus) Settled() bool {
	return s == ReportStatusFinished || s == ReportStatusFailed
}

// ReportJob is one requested export and its progress.
type ReportJob struct {
	ID           string          `db:"id" json:"id"`
	Type         ReportType      `db:"type" json:"type"`
	Params       ReportJobParams `db:"params" json:"params"`
	Status       ReportStatus    `db:"status" json:"status"`
	Progress     int             `db:"progress" json:"progress"`
	ResultURL    *string         `db:"result_url" json:"result_url,omitempty"`
	CreatedBy    string          `db:"created_by" json:"created_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
	ErrorMessage *string         `db:"error_message" json:"error_message,omitempty"`
}

// ReportJobParams holds the export filters, stored as a JSONB column.
type ReportJobParams struct {
	Format       ReportFormat `json:"format"`
	Status       string       `json:"status,omitempty"`
	AcademicYear string       `json:"academic_year,omitempty"`
	Floor        *int         `json:"floor,omitempty"`
}

func (p ReportJobParams) Value() (driver.Value, error) {
	return json.Marshal(p)
}

func (p *ReportJobParams) Scan(src interface{}) error {
	*p = ReportJobParams{}
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("report params: cannot scan %T", src)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, p)
}
