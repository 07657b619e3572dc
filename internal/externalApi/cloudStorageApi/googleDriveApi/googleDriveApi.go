package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/vc_portfolio_dashboard/config"
	"github.com/KotFed0t/vc_portfolio_dashboard/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"
	kindProperty         = "kind"
	listPageSize         = 100
)

type GoogleDriveApi struct {
	srv *drive.Service
	cfg *config.Config
	now func() time.Time
}

func New(ctx context.Context, cfg *config.Config) (*GoogleDriveApi, error) {
	srv, err := drive.NewService(ctx, option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &GoogleDriveApi{srv: srv, cfg: cfg, now: time.Now}, nil
}

// UploadFile stores the content under filename, tagged with kind, and returns a public view link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename, kind string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	mimeType := mime.TypeByExtension(filepath.Ext(filename))

	fileMeta := &drive.File{
		Name:          filename,
		MimeType:      mimeType,
		AppProperties: map[string]string{kindProperty: kind},
	}
	if folder := a.cfg.GoogleDrive.FolderID; folder != "" {
		fileMeta.Parents = []string{folder}
	}

	uploadedFile, err := a.srv.Files.
		Create(fileMeta).
		Media(reader). // chunked upload, failed chunks are retried by the client
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	_, err = a.srv.Permissions.Create(uploadedFile.Id, perm).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on creating permission to uploaded file in google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

// DeleteOldFiles removes files of the given kind created before the configured TTL. Files that
// fail to delete are logged and left for the next run.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context, kind string) (deletedFiles int, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	threshold := a.now().Add(-a.cfg.GoogleDrive.FileTTL).UTC().Format(time.RFC3339)
	query := fmt.Sprintf(
		"appProperties has { key='%s' and value='%s' } and createdTime < '%s' and trashed = false",
		kindProperty, kind, threshold,
	)

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op), slog.String("query", query))

	var failed int
	err = a.srv.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name)").
		PageSize(listPageSize).
		Pages(ctx, func(page *drive.FileList) error {
			for _, f := range page.Files {
				if delErr := a.srv.Files.Delete(f.Id).Context(ctx).Do(); delErr != nil {
					failed++
					slog.Warn("can't delete file", slog.String("rqID", rqID), slog.String("op", op),
						slog.String("fileID", f.Id), slog.String("name", f.Name), slog.String("err", delErr.Error()))
					continue
				}
				deletedFiles++
			}
			return nil
		})
	if err != nil {
		slog.Error("failed on listing files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return deletedFiles, err
	}

	slog.Info("DeleteOldFiles completed", slog.String("rqID", rqID), slog.String("op", op),
		slog.Int("deletedFiles", deletedFiles), slog.Int("failed", failed))

	return deletedFiles, nil
}
