package epub

// Opf is the package document of the epub, it holds the metadata and the
// manifest of all the files in the book
type Opf struct {
	Metadata Metadata   `xml:"metadata" json:"metadata"`
	Manifest []Manifest `xml:"manifest>item" json:"manifest"`
	Spine    Spine      `xml:"spine" json:"spine"`
}

type Metadata struct {
	Title       []string     `xml:"title" json:"title"`
	Language    []string     `xml:"language" json:"language"`
	Creator     []Author     `xml:"creator" json:"creator"`
	Contributor []Author     `xml:"contributor" json:"contributor"`
	Identifier  []Identifier `xml:"identifier" json:"identifier"`
	Publisher   []string     `xml:"publisher" json:"publisher"`
	Description []string     `xml:"description" json:"description"`
	Subject     []string     `xml:"subject" json:"subject"`
	Date        []Date       `xml:"date" json:"date"`
	Meta        []Metafield  `xml:"meta" json:"meta"`
}

type Author struct {
	Data   string `xml:",chardata" json:"author"`
	FileAs string `xml:"file-as,attr" json:"file_as"`
	Role   string `xml:"role,attr" json:"role"`
}

type Identifier struct {
	Data   string `xml:",chardata" json:"data"`
	ID     string `xml:"id,attr" json:"id"`
	Scheme string `xml:"scheme,attr" json:"scheme"`
}

type Date struct {
	Data  string `xml:",chardata" json:"data"`
	Event string `xml:"event,attr" json:"event"`
}

type Metafield struct {
	Name    string `xml:"name,attr" json:"name"`
	Content string `xml:"content,attr" json:"content"`
}

type Manifest struct {
	ID        string `xml:"id,attr" json:"id"`
	Href      string `xml:"href,attr" json:"href"`
	MediaType string `xml:"media-type,attr" json:"media_type"`
}

type Spine struct {
	Items []SpineItem `xml:"itemref" json:"items"`
}

type SpineItem struct {
	IDref string `xml:"idref,attr" json:"idref"`
}
