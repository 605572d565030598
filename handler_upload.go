package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/muhammadolammi/resumeoptimizer/internal/database"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for the form framing around the file.
const multipartOverhead = 1 << 20

func (apiConfig *ApiConfig) uploadHandler(c *gin.Context) {
	user, _ := currentUser(c)
	ctx := c.Request.Context()

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, apiConfig.MaxUploadBytes+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondWithError(c, http.StatusRequestEntityTooLarge, "file is too large")
			return
		}
		respondWithError(c, http.StatusBadRequest, "file is required")
		return
	}
	if fileHeader.Size > apiConfig.MaxUploadBytes {
		respondWithError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	mime := DetectMime(fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if mime == "" {
		respondWithError(c, http.StatusUnsupportedMediaType, "unsupported file type, upload a PDF, DOCX or text file")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "could not read file")
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, apiConfig.MaxUploadBytes+1))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "could not read file")
		return
	}
	if int64(len(data)) > apiConfig.MaxUploadBytes {
		respondWithError(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	text, err := ExtractResumeText(mime, data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedDocument) {
			respondWithError(c, http.StatusUnsupportedMediaType, "unsupported file type, upload a PDF, DOCX or text file")
			return
		}
		apiConfig.Logger.Warn("text extraction failed", zap.String("mime", mime), zap.Error(err))
		respondWithError(c, http.StatusBadRequest, "could not extract text from the document")
		return
	}
	if strings.TrimSpace(text) == "" {
		respondWithError(c, http.StatusBadRequest, "no readable text found in the document")
		return
	}

	provider := storageProviderNone
	objectKey := ""
	if apiConfig.Storage != nil {
		objectKey = fmt.Sprintf("resumes/%s/%s%s", user.ID, uuid.NewString(), strings.ToLower(filepath.Ext(fileHeader.Filename)))
		if err := apiConfig.Storage.Put(ctx, objectKey, mime, data); err != nil {
			apiConfig.Logger.Error("error storing upload", zap.String("key", objectKey), zap.Error(err))
			respondWithError(c, http.StatusBadGateway, "could not store the file")
			return
		}
		provider = storageProviderR2
	}

	resume, err := apiConfig.DB.CreateResume(ctx, database.CreateResumeParams{
		UserID:           user.ID,
		OriginalFilename: filepath.Base(fileHeader.Filename),
		Mime:             mime,
		SizeBytes:        int64(len(data)),
		StorageProvider:  provider,
		ObjectKey:        objectKey,
		ExtractedText:    text,
	})
	if err != nil {
		apiConfig.Logger.Error("error saving resume", zap.Error(err))
		if objectKey != "" {
			if delErr := apiConfig.Storage.Delete(ctx, objectKey); delErr != nil {
				apiConfig.Logger.Warn("orphaned upload", zap.String("key", objectKey), zap.Error(delErr))
			}
		}
		respondWithError(c, http.StatusInternalServerError, "could not save the resume")
		return
	}
	apiConfig.Metrics.ObserveUpload(mime)

	respondWithJSON(c, http.StatusOK, gin.H{
		"success": true,
		"resume":  databaseResumeToResume(resume),
	})
}

func (apiConfig *ApiConfig) resumeFileHandler(c *gin.Context) {
	user, _ := currentUser(c)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid resume id")
		return
	}
	resume, err := apiConfig.DB.GetResumeForUser(c.Request.Context(), database.GetResumeForUserParams{ID: id, UserID: user.ID})
	if err != nil {
		if database.IsNotFound(err) {
			respondWithError(c, http.StatusNotFound, "resume not found")
			return
		}
		apiConfig.Logger.Error("error loading resume", zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "could not load resume")
		return
	}
	if resume.StorageProvider == storageProviderNone || apiConfig.Storage == nil {
		respondWithError(c, http.StatusNotFound, "original file was not stored")
		return
	}

	data, err := apiConfig.Storage.Get(c.Request.Context(), resume.ObjectKey)
	if err != nil {
		apiConfig.Logger.Error("error fetching stored file", zap.String("key", resume.ObjectKey), zap.Error(err))
		respondWithError(c, http.StatusBadGateway, "could not fetch the file")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resume.OriginalFilename))
	c.Data(http.StatusOK, resume.Mime, data)
}
