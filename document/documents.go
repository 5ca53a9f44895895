package document

import (
	"context"
	"fmt"
	"garmentflow/bizerror"
	"garmentflow/domain"
	"garmentflow/domain/reposition"
	"garmentflow/idgen"
	"garmentflow/persistence"
	"garmentflow/session"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

const (
	FieldDocuments = "documents"
	MaxFiles       = 5
	MaxFileSize    = 10 * 1024 * 1024
)

var (
	documentIdWorker = idgen.NewWorker()

	allowedExtensions = map[string]string{
		"pdf":  "application/pdf",
		"xml":  "application/xml",
		"jpg":  "image/jpeg",
		"jpeg": "image/jpeg",
		"png":  "image/png",
	}

	StoreUploadsFunc    = StoreUploads
	AttachDocumentsFunc = AttachDocuments
	OpenDocumentFunc    = OpenDocument
)

// StoredName builds the name a file is kept under: {fieldname}-{unixMillis}-{random}.{ext}.
func StoredName(fieldName, originalName string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%d.%s", fieldName, now.UnixNano()/int64(time.Millisecond), uuid.New().ID(), extensionOf(originalName))
}

func extensionOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// ValidateUploads checks count, size and extension of every file before anything is stored.
func ValidateUploads(files []*multipart.FileHeader) error {
	if len(files) > MaxFiles {
		return bizerror.BadParam(fmt.Sprintf("at most %d files can be uploaded", MaxFiles))
	}
	for _, f := range files {
		if f.Size > MaxFileSize {
			return bizerror.BadParam(fmt.Sprintf("file '%s' exceeds %d bytes", f.Filename, MaxFileSize))
		}
		if _, ok := allowedExtensions[extensionOf(f.Filename)]; !ok {
			return bizerror.BadParam(fmt.Sprintf("file '%s' is not allowed, only pdf, xml, jpg, jpeg and png files are accepted", f.Filename))
		}
	}
	return nil
}

// StoreUploads saves the files into the active store and returns the document metadata,
// not yet bound to a reposition.
func StoreUploads(ctx context.Context, fieldName string, files []*multipart.FileHeader) ([]domain.RepositionDocument, error) {
	if err := ValidateUploads(files); err != nil {
		return nil, err
	}
	docs := make([]domain.RepositionDocument, 0, len(files))
	for _, f := range files {
		doc, err := storeUpload(ctx, fieldName, f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func storeUpload(ctx context.Context, fieldName string, f *multipart.FileHeader) (*domain.RepositionDocument, error) {
	src, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	name := StoredName(fieldName, f.Filename, time.Now())
	contentType := allowedExtensions[extensionOf(f.Filename)]
	if err := ActiveFileStore.Save(ctx, name, src, contentType); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{"filename": name, "size": f.Size}).Debug("document stored")
	return &domain.RepositionDocument{Filename: name, OriginalName: f.Filename, Size: f.Size, ContentType: contentType}, nil
}

// AttachDocuments stores the files and binds them to an existing reposition.
func AttachDocuments(id types.ID, files []*multipart.FileHeader, s *session.Session) ([]domain.RepositionDocument, error) {
	if len(files) == 0 {
		return nil, bizerror.BadParam("no file uploaded")
	}
	if err := ValidateUploads(files); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB(s.Context)
	if _, err := reposition.FindReposition(db, id); err != nil {
		return nil, err
	}

	docs, err := StoreUploadsFunc(s.Context, FieldDocuments, files)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	txErr := db.Transaction(func(tx *gorm.DB) error {
		for i := range docs {
			docs[i].ID = idgen.NextID(documentIdWorker)
			docs[i].RepositionID = id
			docs[i].UploadedBy = s.Identity.ID
			docs[i].CreatedAt = now
			if err := tx.Create(&docs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	logrus.WithFields(logrus.Fields{"repositionId": id, "count": len(docs)}).Info("documents attached")
	return docs, nil
}

// OpenDocument opens a stored file. Only names produced by StoredName are served.
func OpenDocument(filename string, s *session.Session) (*domain.RepositionDocument, io.ReadCloser, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return nil, nil, bizerror.BadParam("invalid file name")
	}
	doc := domain.RepositionDocument{}
	if err := persistence.ActiveDataSourceManager.GormDB(s.Context).Where("filename = ?", filename).First(&doc).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return nil, nil, bizerror.ErrNotFound
		}
		return nil, nil, err
	}
	r, err := ActiveFileStore.Open(s.Context, filename)
	if err != nil {
		return nil, nil, err
	}
	return &doc, r, nil
}
