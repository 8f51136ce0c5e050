package service_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/IvanChernomyrdin/go-oralvis/internal/server/models"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service"
	"github.com/IvanChernomyrdin/go-oralvis/internal/server/service/mocks"
	serr "github.com/IvanChernomyrdin/go-oralvis/internal/shared/errors"
)

type scansDeps struct {
	scans    *mocks.MockScansRepo
	storage  *mocks.MockObjectStorage
	renderer *mocks.MockReportRenderer
}

func newScansService(t *testing.T) (*service.ScansService, scansDeps) {
	t.Helper()

	ctrl := gomock.NewController(t)
	d := scansDeps{
		scans:    mocks.NewMockScansRepo(ctrl),
		storage:  mocks.NewMockObjectStorage(ctrl),
		renderer: mocks.NewMockReportRenderer(ctrl),
	}
	return service.NewScansService(d.scans, d.storage, d.renderer, "oralvis-scans"), d
}

func technician() models.Principal {
	return models.Principal{UserID: uuid.New(), Email: "tech@mail.com", Role: models.RoleTechnician}
}

func dentist() models.Principal {
	return models.Principal{UserID: uuid.New(), Email: "dentist@mail.com", Role: models.RoleDentist}
}

// stagedImage создаёт временный файл, как это делает api-слой.
func stagedImage(t *testing.T) service.ImageFile {
	t.Helper()

	p := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(p, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))
	return service.ImageFile{Path: p, Filename: "Tooth.PNG", ContentType: "image/png", Size: 12}
}

func validMeta() service.ScanMeta {
	return service.ScanMeta{PatientName: "Jane Doe", PatientID: "P-001", Region: "Upper"}
}

// Успех: файл уходит в хранилище, локальная копия удаляется, тип по умолчанию RGB
func TestScansService_Upload_OK(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	caller := technician()
	img := stagedImage(t)
	url := "https://cdn.example.com/oralvis/oralvis-scans/scan-x.png"

	d.storage.EXPECT().
		Upload(ctx, gomock.Any(), img.Path, "image/png").
		DoAndReturn(func(_ context.Context, objectName, filePath, _ string) (string, error) {
			require.Regexp(t, regexp.MustCompile(`^oralvis-scans/scan-[0-9a-f-]{36}\.png$`), objectName)
			_, err := os.Stat(filePath)
			require.NoError(t, err)
			return url, nil
		})

	d.scans.EXPECT().
		Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.Scan) (models.Scan, error) {
			require.Equal(t, "Jane Doe", s.PatientName)
			require.Equal(t, "P-001", s.PatientID)
			require.Equal(t, models.DefaultScanType, s.ScanType)
			require.Equal(t, "Upper", s.Region)
			require.Equal(t, url, s.ImageURL)
			require.NotNil(t, s.UploadedBy)
			require.Equal(t, caller.UserID, *s.UploadedBy)

			s.ID = uuid.New()
			s.UploadDate = time.Now()
			return s, nil
		})

	scan, err := svc.Upload(ctx, caller, validMeta(), img)
	require.NoError(t, err)
	require.Equal(t, url, scan.ImageURL)
	require.Equal(t, "tech@mail.com", *scan.UploadedByEmail)

	_, err = os.Stat(img.Path)
	require.True(t, os.IsNotExist(err))
}

func TestScansService_Upload_KeepsScanType(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	meta := validMeta()
	meta.ScanType = "IR"

	d.storage.EXPECT().Upload(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("u", nil)
	d.scans.EXPECT().Create(ctx, gomock.Any()).
		DoAndReturn(func(_ context.Context, s models.Scan) (models.Scan, error) {
			require.Equal(t, "IR", s.ScanType)
			return s, nil
		})

	_, err := svc.Upload(ctx, technician(), meta, stagedImage(t))
	require.NoError(t, err)
}

// dentist не может загружать: хранилище не трогаем
func TestScansService_Upload_Forbidden(t *testing.T) {
	svc, _ := newScansService(t)

	_, err := svc.Upload(context.Background(), dentist(), validMeta(), stagedImage(t))
	require.ErrorIs(t, err, serr.ErrForbidden)
}

func TestScansService_Upload_Validation(t *testing.T) {
	missingName := validMeta()
	missingName.PatientName = " "
	missingID := validMeta()
	missingID.PatientID = ""
	missingRegion := validMeta()
	missingRegion.Region = ""

	cases := map[string]struct {
		meta  service.ScanMeta
		image func(t *testing.T) service.ImageFile
	}{
		"no patient name": {missingName, stagedImage},
		"no patient id":   {missingID, stagedImage},
		"no region":       {missingRegion, stagedImage},
		"no image": {validMeta(), func(*testing.T) service.ImageFile {
			return service.ImageFile{}
		}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc, _ := newScansService(t)
			_, err := svc.Upload(context.Background(), technician(), tc.meta, tc.image(t))
			require.ErrorIs(t, err, serr.ErrInvalidInput)
		})
	}
}

func TestScansService_Upload_StorageError(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	boom := errors.New("minio down")
	d.storage.EXPECT().Upload(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("", boom)

	_, err := svc.Upload(ctx, technician(), validMeta(), stagedImage(t))
	require.ErrorIs(t, err, serr.ErrInternal)
	require.ErrorIs(t, err, boom)
}

// вставка не удалась после загрузки: объект осиротел
func TestScansService_Upload_OrphanedObject(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	d.storage.EXPECT().Upload(ctx, gomock.Any(), gomock.Any(), gomock.Any()).Return("https://cdn/x.png", nil)
	d.scans.EXPECT().Create(ctx, gomock.Any()).Return(models.Scan{}, serr.ErrInternal)

	_, err := svc.Upload(ctx, technician(), validMeta(), stagedImage(t))
	require.ErrorIs(t, err, serr.ErrInternal)

	var orphan *service.OrphanedObjectError
	require.ErrorAs(t, err, &orphan)
	require.Equal(t, "https://cdn/x.png", orphan.URL)
}

func TestScansService_List(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	want := []models.Scan{{ID: uuid.New()}, {ID: uuid.New()}}
	d.scans.EXPECT().List(ctx).Return(want, nil)

	got, err := svc.List(ctx, dentist())
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = svc.List(ctx, technician())
	require.ErrorIs(t, err, serr.ErrForbidden)
}

func TestScansService_List_RepoError(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	d.scans.EXPECT().List(ctx).Return(nil, serr.ErrInternal)

	_, err := svc.List(ctx, dentist())
	require.ErrorIs(t, err, serr.ErrInternal)
}

func TestScansService_ListMine(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	caller := technician()
	want := []models.Scan{{ID: uuid.New(), UploadedBy: &caller.UserID}}
	d.scans.EXPECT().ListByUploader(ctx, caller.UserID).Return(want, nil)

	got, err := svc.ListMine(ctx, caller)
	require.NoError(t, err)
	require.Equal(t, want, got)

	_, err = svc.ListMine(ctx, dentist())
	require.ErrorIs(t, err, serr.ErrForbidden)
}

func TestScansService_Get(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	id := uuid.New()
	d.scans.EXPECT().GetByID(ctx, id).Return(models.Scan{ID: id, Region: "Upper"}, nil)

	scan, err := svc.Get(ctx, dentist(), id.String())
	require.NoError(t, err)
	require.Equal(t, id, scan.ID)
}

func TestScansService_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	id := uuid.New()
	d.scans.EXPECT().GetByID(ctx, id).Return(models.Scan{}, serr.ErrNotFound)

	_, err := svc.Get(ctx, dentist(), id.String())
	require.ErrorIs(t, err, serr.ErrNotFound)

	// некорректный id: в базу не ходим
	_, err = svc.Get(ctx, dentist(), "not-a-uuid")
	require.ErrorIs(t, err, serr.ErrNotFound)
}

func TestScansService_Get_Forbidden(t *testing.T) {
	svc, _ := newScansService(t)

	_, err := svc.Get(context.Background(), technician(), uuid.NewString())
	require.ErrorIs(t, err, serr.ErrForbidden)
}

func TestScansService_RenderReport(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	id := uuid.New()
	scan := models.Scan{ID: id, PatientName: "Jane"}
	d.scans.EXPECT().GetByID(ctx, id).Return(scan, nil)
	d.renderer.EXPECT().Render(gomock.Any(), scan).
		DoAndReturn(func(w io.Writer, _ models.Scan) error {
			_, err := w.Write([]byte("%PDF-1.3 fake"))
			return err
		})

	rep, err := svc.RenderReport(ctx, dentist(), id.String())
	require.NoError(t, err)
	require.Equal(t, []byte("%PDF-1.3 fake"), rep.Content)
	require.Regexp(t, `^scan-report-`+id.String()+`-\d+\.pdf$`, rep.Filename)
}

func TestScansService_RenderReport_Errors(t *testing.T) {
	ctx := context.Background()
	svc, d := newScansService(t)

	_, err := svc.RenderReport(ctx, technician(), uuid.NewString())
	require.ErrorIs(t, err, serr.ErrForbidden)

	id := uuid.New()
	d.scans.EXPECT().GetByID(ctx, id).Return(models.Scan{ID: id}, nil)
	d.renderer.EXPECT().Render(gomock.Any(), gomock.Any()).Return(errors.New("font missing"))

	_, err = svc.RenderReport(ctx, dentist(), id.String())
	require.ErrorIs(t, err, serr.ErrInternal)
}
