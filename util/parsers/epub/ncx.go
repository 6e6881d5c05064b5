package epub

// Ncx is the navigation document of the epub
type Ncx struct {
	Points []Point `xml:"navMap>navPoint" json:"points"`
}

// Point is a single entry of the navigation map, points can nest
type Point struct {
	Text    string  `xml:"navLabel>text" json:"text"`
	Content string  `xml:"content" json:"content"`
	Points  []Point `xml:"navPoint" json:"points"`
}
