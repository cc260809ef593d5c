package http

import (
	"errors"
	"net/http"

	"zaman/internal/core"
	"zaman/internal/importer"
	"zaman/internal/log"
	"zaman/internal/spending"
)

const msgUploadMissing = "Загрузите файл выписки (CSV или OFX)."

type importResponse struct {
	importer.Result
	Analysis core.SpendingAnalysis `json:"analysis"`
}

// handleImportStatement accepts a multipart upload in the "file" field and
// returns the parsed transactions together with their analysis.
func (s *Server) handleImportStatement(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "file_too_large", "Файл слишком большой (максимум 5 МБ).").Write(w)
			return
		}
		BadRequestError(msgUploadMissing).Write(w)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		BadRequestError(msgUploadMissing).Write(w)
		return
	}
	defer file.Close()

	s.appMetrics.importsTotal.Add(1)
	result, err := importer.Import(header.Filename, file)
	if err != nil {
		s.appMetrics.importFailures.Add(1)
		var importErr *importer.ImportError
		if errors.As(err, &importErr) {
			log.FromContext(ctx).WarnContext(ctx, "Statement rejected",
				"filename", header.Filename,
				log.FieldOperation, log.OpParse,
				log.FieldError, importErr.Err)
			UnprocessableEntityError(importErr.Message).Write(w)
			return
		}
		log.FromContext(ctx).ErrorContext(ctx, "Statement import failed", log.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}

	s.track(r, "statement_imported", map[string]any{
		"rows":        len(result.Transactions),
		"hasCategory": result.HasCategoryColumn,
	})
	OK(importResponse{
		Result:   result,
		Analysis: spending.Analyze(result.Transactions, result.HasCategoryColumn),
	}).Write(w)
}

type analyzeRequest struct {
	Transactions      []core.Transaction `json:"transactions"`
	HasCategoryColumn bool               `json:"hasCategoryColumn"`
}

func (s *Server) handleAnalyzeSpending(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	OK(spending.Analyze(req.Transactions, req.HasCategoryColumn)).Write(w)
}
