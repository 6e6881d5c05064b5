package epub

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Book holds the parsed documents of an epub file
type Book struct {
	Ncx       Ncx       `json:"ncx"`
	Opf       Opf       `json:"opf"`
	Container Container `json:"container"`
	Mimetype  string    `json:"mimetype"`

	fd *zip.ReadCloser
}

// Open opens a file inside the epub, resolved relative to the package document
func (p *Book) Open(file string) (io.ReadCloser, error) {
	return p.open(p.filename(file))
}

// Files returns the names of all files in the epub archive
func (p *Book) Files() []string {
	var files []string
	for _, f := range p.fd.File {
		files = append(files, f.Name)
	}
	return files
}

func (p *Book) Close() error {
	return p.fd.Close()
}

func (p *Book) readXML(n string, v interface{}) error {
	rc, err := p.open(n)
	if err != nil {
		return err
	}
	defer rc.Close()
	return xml.NewDecoder(rc).Decode(v)
}

func (p *Book) readBytes(n string) ([]byte, error) {
	rc, err := p.open(n)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// filename resolves a manifest href against the rootfile directory
func (p *Book) filename(n string) string {
	return path.Join(path.Dir(p.Container.Rootfile.Fullpath), n)
}

func (p *Book) open(n string) (io.ReadCloser, error) {
	for _, f := range p.fd.File {
		if f.Name == n {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("file not found: %s", n)
}

func (p *Book) GetTitle() string {
	if len(p.Opf.Metadata.Title) > 0 {
		return p.Opf.Metadata.Title[0]
	}
	return ""
}

func (p *Book) GetAuthor() string {
	for _, author := range p.Opf.Metadata.Creator {
		if author.Role == "aut" || author.Role == "" {
			return author.Data
		}
	}
	return ""
}

func (p *Book) GetLanguage() string {
	if len(p.Opf.Metadata.Language) > 0 {
		return p.Opf.Metadata.Language[0]
	}
	return ""
}

func (p *Book) GetDescription() string {
	if len(p.Opf.Metadata.Description) > 0 {
		return p.Opf.Metadata.Description[0]
	}
	return ""
}

func (p *Book) GetPublisher() string {
	if len(p.Opf.Metadata.Publisher) > 0 {
		return p.Opf.Metadata.Publisher[0]
	}
	return ""
}

func (p *Book) GetISBN() string {
	for _, identifier := range p.Opf.Metadata.Identifier {
		if identifier.Scheme == "ISBN" || identifier.Scheme == "" {
			return identifier.Data
		}
	}
	return ""
}

// GetCover extracts the cover image into dest and returns the written path.
// Returns an empty path without error when the book declares no cover.
func (p *Book) GetCover(dest string) (string, error) {
	var filename string
	for _, meta := range p.Opf.Metadata.Meta {
		if meta.Name == "cover" {
			filename = meta.Content
		}
	}

	// The cover meta may reference a manifest id instead of a file
	if filepath.Ext(filename) == "" {
		for _, m := range p.Opf.Manifest {
			if m.ID == filename && strings.HasPrefix(m.MediaType, "image/") {
				filename = m.Href
			}
		}
	}

	if filename == "" {
		return "", nil
	}

	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return "", fmt.Errorf("cover destination does not exist: %s", dest)
	}

	var fileDest string
	for _, f := range p.fd.File {
		if filepath.Base(f.Name) == filepath.Base(filename) {
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			defer rc.Close()

			fileDest = filepath.Join(dest, "cover"+filepath.Ext(filename))
			outFile, err := os.Create(fileDest)
			if err != nil {
				return "", err
			}
			defer outFile.Close()

			if _, err := io.Copy(outFile, rc); err != nil {
				return "", err
			}
		}
	}
	return fileDest, nil
}
