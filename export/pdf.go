// Package export renders ink pages and their answer annotations to PDF.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/unidoc/unipdf/v3/contentstream"
	"github.com/unidoc/unipdf/v3/contentstream/draw"
	"github.com/unidoc/unipdf/v3/creator"
	pdf "github.com/unidoc/unipdf/v3/model"

	"github.com/ddvk/inkcalc/encoding/rm"
	"github.com/ddvk/inkcalc/ink"
	"github.com/ddvk/inkcalc/log"
)

var rmPageSize = creator.PageSize{445, 594}

type Options struct {
	AddPageNumbers bool
	// Background is an optional PDF whose pages are drawn under the ink.
	Background []byte
	PenWidth   float64
	FontSize   float64
}

type PdfGenerator struct {
	options   Options
	pdfReader *pdf.PdfReader
}

func NewPdfGenerator(options Options) *PdfGenerator {
	if options.PenWidth <= 0 {
		options.PenWidth = 1
	}
	if options.FontSize <= 0 {
		options.FontSize = 12
	}
	return &PdfGenerator{options: options}
}

// WriteFile renders pages to path.
func (p *PdfGenerator) WriteFile(pages [][]*ink.Shape, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "can't create output file")
	}
	defer f.Close()
	return p.Generate(pages, f)
}

// Generate renders one PDF page per entry of pages: draw shapes become
// paths, system annotations become text.
func (p *PdfGenerator) Generate(pages [][]*ink.Shape, w io.Writer) error {
	if err := p.initBackground(); err != nil {
		return err
	}

	c := creator.New()
	c.SetPageSize(rmPageSize)
	scale := c.Width() / rm.DeviceWidth

	if p.options.AddPageNumbers {
		c.DrawFooter(func(block *creator.Block, args creator.FooterFunctionArgs) {
			para := c.NewParagraph(fmt.Sprintf("%d", args.PageNum))
			para.SetFontSize(8)
			para.SetPos(block.Width()-20, block.Height()-10)
			block.Draw(para)
		})
	}

	for i, shapes := range pages {
		page, err := p.addPage(c, i+1)
		if err != nil {
			return err
		}

		ops := inkOperations(shapes, scale, c.Height(), p.options.PenWidth)
		if len(*ops) > 0 {
			if err := page.AppendContentStream(string(ops.Bytes())); err != nil {
				return errors.Wrapf(err, "page %d", i+1)
			}
		}

		for _, sh := range shapes {
			if sh.Kind != ink.Text || sh.Text == "" {
				continue
			}
			para := c.NewParagraph(sh.Text)
			para.SetFontSize(p.options.FontSize)
			if sh.IsSystem() {
				para.SetColor(creator.ColorRGBFrom8bit(0x1a, 0x5f, 0xb4))
			}
			para.SetPos(sh.X*scale, sh.Y*scale)
			if err := c.Draw(para); err != nil {
				return errors.Wrapf(err, "page %d", i+1)
			}
		}
	}

	return c.Write(w)
}

// inkOperations strokes every segment of the draw shapes. PDF y grows
// upwards, so y is flipped against the page height.
func inkOperations(shapes []*ink.Shape, scale, height, penWidth float64) *contentstream.ContentStreamOperations {
	cc := contentstream.NewContentCreator()
	for _, sh := range shapes {
		if sh.Kind != ink.Draw {
			continue
		}
		for _, seg := range sh.Segments {
			if len(seg.Points) < 2 {
				continue
			}
			path := draw.NewPath()
			for _, pt := range seg.Points {
				x, y := (sh.X+pt.X)*scale, (sh.Y+pt.Y)*scale
				path = path.AppendPoint(draw.NewPoint(x, height-y))
			}
			cc.Add_q()
			cc.Add_w(penWidth)
			cc.Add_RG(0, 0, 0)
			draw.DrawPathWithCreator(path, cc)
			cc.Add_S()
			cc.Add_Q()
		}
	}
	return cc.Operations()
}

func (p *PdfGenerator) initBackground() error {
	p.pdfReader = nil
	if len(p.options.Background) == 0 {
		return nil
	}
	reader, err := pdf.NewPdfReader(bytes.NewReader(p.options.Background))
	if err != nil {
		return errors.Wrap(err, "background pdf")
	}
	p.pdfReader = reader
	return nil
}

func (p *PdfGenerator) addPage(c *creator.Creator, pageNum int) (*pdf.PdfPage, error) {
	if p.pdfReader == nil {
		return c.NewPage(), nil
	}

	numPages, err := p.pdfReader.GetNumPages()
	if err != nil {
		return nil, err
	}
	if pageNum > numPages {
		log.Trace.Printf("export: no background for page %d", pageNum)
		return c.NewPage(), nil
	}

	bg, err := p.pdfReader.GetPage(pageNum)
	if err != nil {
		return nil, err
	}
	block, err := creator.NewBlockFromPage(bg)
	if err != nil {
		return nil, err
	}
	factor := rmPageSize[0] / block.Width()
	block.SetPos(0, 0)
	block.Scale(factor, factor)

	page := c.NewPage()
	if err := c.Draw(block); err != nil {
		return nil, err
	}
	return page, nil
}
