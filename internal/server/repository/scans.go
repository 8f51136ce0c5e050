package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
)

// Запрос на чтение снимков вместе с email загрузившего.
// uploaded_by может ссылаться на удалённого пользователя, поэтому LEFT JOIN.
const selectScans = `SELECT s.id, s.patient_name, s.patient_id, s.scan_type, s.region,
       s.image_url, s.upload_date, s.uploaded_by, u.email
  FROM scans s
  LEFT JOIN users u ON s.uploaded_by = u.id`

type ScansRepository struct {
	db *sql.DB
}

func NewScansRepository(db *sql.DB) *ScansRepository {
	return &ScansRepository{db: db}
}

// Create вставляет запись о снимке. id и upload_date назначает база.
func (r *ScansRepository) Create(ctx context.Context, scan models.Scan) (models.Scan, error) {
	var uploadedBy any
	if scan.UploadedBy != nil {
		uploadedBy = *scan.UploadedBy
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO scans (patient_name, patient_id, scan_type, region, image_url, uploaded_by)
		 VALUES ($1,$2,$3,$4,$5,$6)
		 RETURNING id, upload_date`,
		scan.PatientName, scan.PatientID, scan.ScanType, scan.Region, scan.ImageURL, uploadedBy,
	).Scan(&scan.ID, &scan.UploadDate)
	if err != nil {
		return models.Scan{}, serr.ErrInternal
	}

	return scan, nil
}

// List возвращает все снимки, новые первыми.
func (r *ScansRepository) List(ctx context.Context) ([]models.Scan, error) {
	rows, err := r.db.QueryContext(ctx, selectScans+` ORDER BY s.upload_date DESC`)
	if err != nil {
		return nil, serr.ErrInternal
	}
	defer rows.Close()

	return scanRows(rows)
}

// ListByUploader возвращает снимки, загруженные пользователем uploaderID.
func (r *ScansRepository) ListByUploader(ctx context.Context, uploaderID uuid.UUID) ([]models.Scan, error) {
	rows, err := r.db.QueryContext(ctx,
		selectScans+` WHERE s.uploaded_by = $1 ORDER BY s.upload_date DESC`,
		uploaderID,
	)
	if err != nil {
		return nil, serr.ErrInternal
	}
	defer rows.Close()

	return scanRows(rows)
}

func (r *ScansRepository) GetByID(ctx context.Context, id uuid.UUID) (models.Scan, error) {
	row := r.db.QueryRowContext(ctx, selectScans+` WHERE s.id = $1`, id)

	scan, err := scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Scan{}, serr.ErrNotFound
		}
		return models.Scan{}, serr.ErrInternal
	}
	return scan, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (models.Scan, error) {
	var (
		s          models.Scan
		uploadedBy uuid.NullUUID
		email      sql.NullString
	)

	if err := row.Scan(
		&s.ID, &s.PatientName, &s.PatientID, &s.ScanType, &s.Region,
		&s.ImageURL, &s.UploadDate, &uploadedBy, &email,
	); err != nil {
		return models.Scan{}, err
	}

	if uploadedBy.Valid {
		id := uploadedBy.UUID
		s.UploadedBy = &id
	}
	if email.Valid {
		e := email.String
		s.UploadedByEmail = &e
	}
	return s, nil
}

func scanRows(rows *sql.Rows) ([]models.Scan, error) {
	out := make([]models.Scan, 0)
	for rows.Next() {
		s, err := scanRow(rows)
		if err != nil {
			return nil, serr.ErrInternal
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, serr.ErrInternal
	}
	return out, nil
}
