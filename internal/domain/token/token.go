// Package token defines positioned text extracted from a PDF page.
package token

// Box is a bounding box in page space (PDF points, origin bottom-left).
// (X0, Y0) is the left end of the text baseline, i.e. the bottom-left corner,
// and is the origin used for matching. Y1 is the top edge (baseline plus font size),
// so a point picked at the visual top-left of a word sits about one font size above Y0.
type Box struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Token is a run of text with its bounding box.
type Token struct {
	Box
	Text string `json:"text"`
}

// Page holds the extracted tokens of one page together with its size in points.
type Page struct {
	Number int     `json:"page"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Tokens []Token `json:"tokens"`
}
