package utils

import (
	"github.com/gofiber/fiber/v2"
)

// Page is a window over a list endpoint, read from ?page= and ?limit=.
type Page struct {
	Number   int   `json:"page"`
	Limit    int   `json:"limit"`
	Total    int64 `json:"total"`
	LastPage int   `json:"last_page"`
}

// PageFromQuery falls back to page 1 and defaultLimit on missing or bad
// values and clamps the limit to maxLimit.
func PageFromQuery(c *fiber.Ctx, defaultLimit, maxLimit int) Page {
	number := c.QueryInt("page", 1)
	if number < 1 {
		number = 1
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// WithTotal fills in the item count and the index of the last page.
func (p Page) WithTotal(total int64) Page {
	p.Total = total
	p.LastPage = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return p
}

type PagedList struct {
	Data       interface{} `json:"data"`
	Pagination Page        `json:"pagination"`
}
