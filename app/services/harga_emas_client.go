package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	ErrPriceSourceUnavailable = errors.New("price source unavailable")
	ErrPriceTableNotFound     = errors.New("price table not found")
)

var indonesianMonths = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// HargaEmasClient reads the daily Antam price history table from harga-emas.org
type HargaEmasClient struct {
	BaseURL    string
	UserAgent  string
	HTTPClient *http.Client
	Timeout    time.Duration
}

func NewHargaEmasClient(baseURL, userAgent string, timeout time.Duration) *HargaEmasClient {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &HargaEmasClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		UserAgent:  userAgent,
		HTTPClient: &http.Client{Timeout: timeout},
		Timeout:    timeout,
	}
}

func (c *HargaEmasClient) Name() string { return "harga-emas" }

// SourceURL is the history page of the date, e.g. .../2024/Januari/05
func (c *HargaEmasClient) SourceURL(date time.Time) string {
	return fmt.Sprintf("%s/%04d/%s/%02d", c.BaseURL, date.Year(), indonesianMonths[date.Month()-1], date.Day())
}

// FetchTable downloads the page of the date and returns every row of the price table as trimmed cell texts
func (c *HargaEmasClient) FetchTable(ctx context.Context, date time.Time) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.SourceURL(date), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceSourceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrPriceSourceUnavailable, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPriceSourceUnavailable, err)
	}
	return ExtractPriceTable(doc)
}

// ExtractPriceTable walks "#container > div:nth-child(3) > div.col-md-8 > table:nth-child(2) > tbody"
func ExtractPriceTable(doc *html.Node) ([][]string, error) {
	container := findByID(doc, "container")
	if container == nil {
		return nil, fmt.Errorf("%w: #container missing", ErrPriceTableNotFound)
	}
	section := nthElementChild(container, 3)
	if section == nil || section.DataAtom != atom.Div {
		return nil, fmt.Errorf("%w: content section missing", ErrPriceTableNotFound)
	}
	column := firstChild(section, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && hasClass(n, "col-md-8")
	})
	if column == nil {
		return nil, fmt.Errorf("%w: main column missing", ErrPriceTableNotFound)
	}
	table := nthElementChild(column, 2)
	if table == nil || table.DataAtom != atom.Table {
		return nil, fmt.Errorf("%w: history table missing", ErrPriceTableNotFound)
	}
	tbody := firstChild(table, func(n *html.Node) bool { return n.DataAtom == atom.Tbody })
	if tbody == nil {
		return nil, fmt.Errorf("%w: table body missing", ErrPriceTableNotFound)
	}

	var rows [][]string
	for tr := tbody.FirstChild; tr != nil; tr = tr.NextSibling {
		if tr.Type != html.ElementNode || tr.DataAtom != atom.Tr {
			continue
		}
		cells := []string{}
		walk(tr, func(n *html.Node) {
			if n.Type == html.ElementNode && n.DataAtom == atom.Td {
				cells = append(cells, strings.TrimSpace(textContent(n)))
			}
		})
		rows = append(rows, cells)
	}
	return rows, nil
}

func walk(n *html.Node, visit func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
		walk(c, visit)
	}
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// nthElementChild is 1-based and counts element siblings of any tag, like :nth-child
func nthElementChild(n *html.Node, pos int) *html.Node {
	i := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		i++
		if i == pos {
			return c
		}
	}
	return nil
}

func firstChild(n *html.Node, match func(*html.Node) bool) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && match(c) {
			return c
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(strings.Fields(attr(n, "class")), class)
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
