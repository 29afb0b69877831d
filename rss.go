package folio

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/content"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Description string   `xml:"description"`
	PubDate     string   `xml:"pubDate"`
	GUID        string   `xml:"guid"`
	Author      string   `xml:"author,omitempty"`
	Categories  []string `xml:"category"`
}

func (a *App) renderRSS(c echo.Context, articles []content.Article) error {
	base := a.Config.URL
	items := make([]rssItem, 0, len(articles))
	for _, art := range articles {
		postURL := BuildURL(base, "blog", art.Slug)
		items = append(items, rssItem{
			Title:       art.Title,
			Link:        postURL,
			Description: art.Description,
			PubDate:     art.PubDate.Format(time.RFC1123Z),
			GUID:        postURL,
			Author:      rssAuthor(a.Config.Email, art.Author),
			Categories:  art.Tags,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        siteRoot(base),
			Description: a.Config.Description,
			Language:    a.Config.Language,
			Items:       items,
		},
	}
	if len(articles) > 0 {
		feed.Channel.LastBuildDate = articles[0].PubDate.Format(time.RFC1123Z)
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}

// rssAuthor formats the RSS author element, which must lead with an email.
func rssAuthor(email, name string) string {
	if email == "" {
		return ""
	}
	if name == "" {
		return email
	}
	return email + " (" + name + ")"
}
