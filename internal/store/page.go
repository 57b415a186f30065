package store

const MaxLimit = 100

// Page is a 1-based page number and a page size.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps number and limit into usable values.
func NewPage(number, limit, defaultLimit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Number: number, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}
