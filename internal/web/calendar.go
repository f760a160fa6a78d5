package web

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"badmincal/internal/filter"
)

// handleCalendar serves the filtered iCalendar export.
//
// GET /api/calendar?o=1&lc=750&c=1&f=0&y=0&g=0&m=0&sg=1&ss=1&sf=1&a=30&lang=zh
//
// Criteria parsing clamps or defaults bad values instead of failing; only a
// compilation failure produces an error response, because a corrupt
// calendar file is worse than no file.
func (s *Server) handleCalendar(c *gin.Context) {
	criteria := filter.Parse(c.Request.URL.Query(), s.cfg.Locales, s.cfg.DefaultLocale())

	cat, err := s.store.Year(s.cfg.CalendarOutputYear)
	if err != nil {
		respondError(c, err)
		return
	}

	payload, err := s.compiler.Compile(cat, criteria)
	if err != nil {
		s.logger.Error("calendar compilation failed", zap.Error(err))
		respondError(c, err)
		return
	}

	fileName := filter.FileName(criteria)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", url.PathEscape(fileName)))
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(payload))
}
