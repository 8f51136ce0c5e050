package api

import (
	smodels "github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/shared/models"
)

func userView(u smodels.User) models.UserView {
	return models.UserView{
		ID:    u.ID.String(),
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func tokenClaims(p smodels.Principal) models.TokenClaims {
	c := models.TokenClaims{
		UserID: p.UserID.String(),
		Email:  p.Email,
		Role:   string(p.Role),
	}
	if !p.IssuedAt.IsZero() {
		c.IssuedAt = p.IssuedAt.Unix()
	}
	if !p.ExpiresAt.IsZero() {
		c.ExpiresAt = p.ExpiresAt.Unix()
	}
	return c
}

func scanView(s smodels.Scan) models.Scan {
	v := models.Scan{
		ID:              s.ID.String(),
		PatientName:     s.PatientName,
		PatientID:       s.PatientID,
		ScanType:        s.ScanType,
		Region:          s.Region,
		ImageURL:        s.ImageURL,
		UploadDate:      s.UploadDate,
		UploadedByEmail: s.UploadedByEmail,
	}
	if s.UploadedBy != nil {
		id := s.UploadedBy.String()
		v.UploadedBy = &id
	}
	return v
}

func scanViews(in []smodels.Scan) []models.Scan {
	out := make([]models.Scan, 0, len(in))
	for _, s := range in {
		out = append(out, scanView(s))
	}
	return out
}
