package epub

import (
	"archive/zip"
	"fmt"
)

// Open reads the epub container and package documents and returns a Book.
// The caller must Close the returned Book.
func Open(f string) (*Book, error) {
	fd, err := zip.OpenReader(f)
	if err != nil {
		return nil, err
	}

	b := &Book{fd: fd}
	if err := b.parse(); err != nil {
		fd.Close()
		return nil, err
	}
	return b, nil
}

func (b *Book) parse() error {
	m, err := b.readBytes("mimetype")
	if err != nil {
		return err
	}
	b.Mimetype = string(m)
	if b.Mimetype != "application/epub+zip" {
		return fmt.Errorf("epub: invalid mimetype: %s", b.Mimetype)
	}

	if err := b.readXML("META-INF/container.xml", &b.Container); err != nil {
		return err
	}

	if err := b.readXML(b.Container.Rootfile.Fullpath, &b.Opf); err != nil {
		return err
	}

	for _, mf := range b.Opf.Manifest {
		if mf.MediaType == "application/x-dtbncx+xml" {
			if err := b.readXML(b.filename(mf.Href), &b.Ncx); err != nil {
				return err
			}
		}
	}

	return nil
}
