package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/hay-kot/lingo/internal/core/history"
	"github.com/hay-kot/lingo/internal/core/translation"
	"github.com/hay-kot/lingo/internal/lingo"
	"github.com/hay-kot/lingo/internal/translator"
)

type translateRequest struct {
	Text     string `json:"text"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Provider string `json:"provider"`
	Save     bool   `json:"save"`
}

type translateResponse struct {
	Record   translation.Record `json:"record"`
	Provider string             `json:"provider"`
	Detected bool               `json:"detected"`
	Saved    bool               `json:"saved"`
	Warning  string             `json:"warning,omitempty"`
}

type languagesResponse struct {
	Languages []translation.Language `json:"languages"`
	Providers []string               `json:"providers"`
	CharLimit int                    `json:"char_limit"`
}

type historyResponse struct {
	Partition history.Partition    `json:"partition"`
	Records   []translation.Record `json:"records"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(c echo.Context) error {
	return success(c, languagesResponse{
		Languages: s.svc.Languages(),
		Providers: s.svc.ProviderNames(),
		CharLimit: s.svc.CharLimit(),
	})
}

func (s *Server) handleTranslate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body", nil)
	}

	if problems := validateTranslate(req); len(problems) > 0 {
		return failValidation(c, problems)
	}

	source := req.Source
	if source == "" {
		source = translation.AutoDetect
	}

	res, err := s.svc.TranslateText(c.Request().Context(), lingo.TextRequest{
		Text:     req.Text,
		Source:   source,
		Target:   req.Target,
		Provider: req.Provider,
		Save:     req.Save,
	})
	if err != nil {
		return s.translateError(c, err)
	}

	out := translateResponse{
		Record:   res.Record,
		Provider: res.Provider,
		Detected: res.Detected,
		Saved:    res.Saved,
	}
	if res.HistoryErr != nil {
		s.logger.Warn().Err(res.HistoryErr).Str("id", res.Record.ID).Msg("translation not recorded")
		out.Warning = "translation was not saved to history"
	}
	return success(c, out)
}

func validateTranslate(req translateRequest) map[string]string {
	problems := map[string]string{}
	if strings.TrimSpace(req.Text) == "" {
		problems["text"] = "is required"
	}
	if strings.TrimSpace(req.Target) == "" {
		problems["target"] = "is required"
	}
	return problems
}

func (s *Server) translateError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, lingo.ErrEmptyText):
		return failValidation(c, map[string]string{"text": "is required"})
	case errors.Is(err, lingo.ErrTextTooLong):
		return failValidation(c, map[string]string{"text": err.Error()})
	case errors.Is(err, lingo.ErrUnsupportedLanguage), errors.Is(err, lingo.ErrSameLanguage):
		return failValidation(c, map[string]string{"language": err.Error()})
	case errors.Is(err, lingo.ErrDetectionFailed):
		return failValidation(c, map[string]string{"source": err.Error()})
	case errors.Is(err, translator.ErrUnknownProvider):
		return failValidation(c, map[string]string{"provider": err.Error()})
	case errors.Is(err, translator.ErrTranslationUnavailable):
		return fail(c, http.StatusBadGateway, "Translation provider unavailable", nil)
	default:
		s.logger.Error().Err(err).Msg("translate failed")
		return internalError(c, "Translation failed")
	}
}

func (s *Server) partition(c echo.Context) (history.Partition, error) {
	return history.ParsePartition(c.Param("partition"))
}

func (s *Server) handleHistory(c echo.Context) error {
	p, err := s.partition(c)
	if err != nil {
		return failNotFound(c, err.Error())
	}

	ctx := c.Request().Context()
	records := s.svc.History(ctx, p)
	if q := strings.TrimSpace(c.QueryParam("q")); q != "" {
		records, err = s.svc.SearchHistory(ctx, p, q)
		if err != nil {
			return failValidation(c, map[string]string{"q": err.Error()})
		}
	}

	return success(c, historyResponse{Partition: p, Records: records})
}

func (s *Server) handleHistoryRecord(c echo.Context) error {
	p, err := s.partition(c)
	if err != nil {
		return failNotFound(c, err.Error())
	}

	r, err := s.svc.HistoryRecord(c.Request().Context(), p, c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		return failNotFound(c, "Record not found")
	}
	if err != nil {
		return internalError(c, "Failed to read history")
	}
	return success(c, r)
}

func (s *Server) handleDeleteHistory(c echo.Context) error {
	p, err := s.partition(c)
	if err != nil {
		return failNotFound(c, err.Error())
	}

	records, err := s.svc.DeleteHistory(c.Request().Context(), p, c.Param("id"))
	if err != nil {
		s.logger.Error().Err(err).Str("partition", string(p)).Msg("delete history failed")
		return internalError(c, "Failed to delete record")
	}
	return success(c, historyResponse{Partition: p, Records: records})
}

func (s *Server) handleClearHistory(c echo.Context) error {
	p, err := s.partition(c)
	if err != nil {
		return failNotFound(c, err.Error())
	}

	if err := s.svc.ClearHistory(c.Request().Context(), p); err != nil {
		s.logger.Error().Err(err).Str("partition", string(p)).Msg("clear history failed")
		return internalError(c, "Failed to clear history")
	}
	return success(c, historyResponse{Partition: p, Records: []translation.Record{}})
}

func (s *Server) handleSaveNote(c echo.Context) error {
	records, err := s.svc.SaveFromRecent(c.Request().Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		return failNotFound(c, "Record not found")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("save note failed")
		return internalError(c, "Failed to save note")
	}
	return success(c, historyResponse{Partition: history.Notes, Records: records})
}
