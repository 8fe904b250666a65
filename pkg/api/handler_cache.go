package api

import (
	"net/http"

	echo "github.com/labstack/echo/v5"
)

// cacheGroupView is one message_id's worth of matching cache entries,
// the "grouped by message" shape §4.10 requires.
type cacheGroupView struct {
	MessageID string           `json:"message_id,omitempty"`
	Entries   []cacheEntryView `json:"entries"`
}

// searchCacheHandler handles GET /llm-cache?query=….
func (s *Server) searchCacheHandler(c *echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}

	grouped, err := s.cache.SearchByText(c.Request().Context(), query)
	if err != nil {
		return mapServiceError(err)
	}

	views := make([]cacheGroupView, 0, len(grouped))
	for messageID, entries := range grouped {
		entryViews := make([]cacheEntryView, len(entries))
		for i, e := range entries {
			entryViews[i] = toCacheEntryView(e)
		}
		views = append(views, cacheGroupView{MessageID: messageID, Entries: entryViews})
	}

	return c.JSON(http.StatusOK, envelope{Data: views})
}
