package folio

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

const searchDataCacheControl = "max-age=3600, stale-while-revalidate=86400"

// handleSearchData serves every listed article as a JSON array for
// client-side indexes. The ?v= parameter carries App.Version so clients
// refetch after a reload.
func (a *App) handleSearchData(c echo.Context) error {
	articles, err := a.Cache.ListArticles("")
	if err != nil {
		return err
	}
	docs := make([]SearchDocument, 0, len(articles))
	for _, art := range articles {
		docs = append(docs, newSearchDocument(art))
	}
	c.Response().Header().Set("Cache-Control", searchDataCacheControl)
	return c.JSON(http.StatusOK, docs)
}

// searchDataURL is the search-data address the search page loads, versioned
// by the content load so a reload is never served from a stale cache.
func (a *App) searchDataURL() string {
	return "/data/search-data.json?v=" + strconv.FormatInt(a.Version(), 10)
}
