package response

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Fields  map[string][]string `json:"fields,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// PageEnvelope is the paginated listing shape: count, next, previous, results.
type PageEnvelope struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  any     `json:"results"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondFields(c *gin.Context, status int, code, msg string, fields map[string][]string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
			Fields:  fields,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondPage writes one page of results with absolute next/previous links
// derived from the request URL.
func RespondPage(c *gin.Context, count int64, page int, hasNext, hasPrevious bool, results any) {
	next, previous := PageLinks(c, page, hasNext, hasPrevious)
	c.JSON(http.StatusOK, PageEnvelope{
		Count:    count,
		Next:     next,
		Previous: previous,
		Results:  results,
	})
}

// PageLinks returns the next and previous page URLs, nil when absent.
func PageLinks(c *gin.Context, page int, hasNext, hasPrevious bool) (next, previous *string) {
	if hasNext {
		u := pageURL(c, page+1)
		next = &u
	}
	if hasPrevious {
		u := pageURL(c, page-1)
		previous = &u
	}
	return next, previous
}

func pageURL(c *gin.Context, page int) string {
	u := *c.Request.URL
	u.Host = c.Request.Host
	u.Scheme = "http"
	if c.Request.TLS != nil {
		u.Scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		u.Scheme = proto
	}
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return (&url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path, RawQuery: u.RawQuery}).String()
}
