package workbook

import (
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// Images returns the raster images embedded on a sheet, each with its
// 1-based anchor cell. Discovery walks the OOXML relationship chain:
// workbook -> worksheet -> drawing part -> media. Both twoCellAnchor and
// oneCellAnchor elements are handled; the anchor is the xdr:from cell.
// The result is stably sorted by (row, col, discovery order).
func (w *Workbook) Images(sheet string) ([]models.EmbeddedImage, error) {
	if !w.HasSheet(sheet) {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}

	sheetPath, err := w.sheetPartPath(sheet)
	if err != nil {
		return nil, err
	}
	if sheetPath == "" {
		return nil, nil
	}
	sheetXML, ok := w.readPart(sheetPath)
	if !ok {
		return nil, nil
	}
	sheetRels := parseRelationships(w.partOrNil(relsPathFor(sheetPath)))

	var images []models.EmbeddedImage
	ordinal := 0
	for _, rid := range drawingRefs(sheetXML) {
		drawingPath := resolveZipPath(sheetPath, sheetRels[rid])
		if drawingPath == "" {
			continue
		}
		drawingXML, ok := w.readPart(drawingPath)
		if !ok {
			continue
		}
		drawingRels := parseRelationships(w.partOrNil(relsPathFor(drawingPath)))

		for _, pic := range parseDrawingPics(drawingXML) {
			mediaPath := resolveZipPath(drawingPath, drawingRels[pic.embed])
			if mediaPath == "" {
				continue
			}
			data, ok := w.readPart(mediaPath)
			if !ok || len(data) == 0 {
				continue
			}
			ordinal++
			images = append(images, models.EmbeddedImage{
				Ordinal: ordinal,
				Row:     pic.row,
				Col:     pic.col,
				Format:  NormalizeFormat(path.Ext(mediaPath), data),
				Data:    data,
				Source:  fmt.Sprintf("drawing:%d", ordinal),
			})
		}
	}

	sortImages(images)
	return images, nil
}

// sortImages orders images by (row, col, ordinal), pushing unanchored
// entries after all anchored ones.
func sortImages(images []models.EmbeddedImage) {
	const last = 1 << 30
	key := func(v int) int {
		if v <= 0 {
			return last
		}
		return v
	}
	sort.SliceStable(images, func(i, j int) bool {
		a, b := images[i], images[j]
		if key(a.Row) != key(b.Row) {
			return key(a.Row) < key(b.Row)
		}
		if key(a.Col) != key(b.Col) {
			return key(a.Col) < key(b.Col)
		}
		return a.Ordinal < b.Ordinal
	})
}

// sheetPartPath maps a sheet name to its worksheet part path inside the
// container, via workbook.xml and its relationships.
func (w *Workbook) sheetPartPath(sheet string) (string, error) {
	const workbookPath = "xl/workbook.xml"
	wbXML, ok := w.readPart(workbookPath)
	if !ok {
		return "", nil
	}
	rels := parseRelationships(w.partOrNil("xl/_rels/workbook.xml.rels"))

	decoder := xml.NewDecoder(strings.NewReader(string(wbXML)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, isStart := token.(xml.StartElement)
		if !isStart || se.Name.Local != "sheet" {
			continue
		}
		var name, rid string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "name":
				name = attr.Value
			case "id":
				rid = attr.Value
			}
		}
		if name == sheet && rid != "" {
			return resolveZipPath(workbookPath, rels[rid]), nil
		}
	}
	return "", nil
}

// drawingRefs extracts the relationship ids of <drawing> elements from a
// worksheet part, in document order.
func drawingRefs(sheetXML []byte) []string {
	var rids []string
	decoder := xml.NewDecoder(strings.NewReader(string(sheetXML)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "drawing" {
			for _, attr := range se.Attr {
				if attr.Name.Local == "id" {
					rids = append(rids, attr.Value)
				}
			}
		}
	}
	return rids
}

// drawingPic is one picture anchor found in a drawing part.
type drawingPic struct {
	row   int // 1-based, 0 when the anchor carries no from cell
	col   int
	embed string // r:embed relationship id of the image blip
}

// parseDrawingPics walks a drawing part and returns one entry per anchored
// picture. Within an anchor the first blip wins; anchors without a blip
// (shapes, charts) are skipped.
func parseDrawingPics(drawingXML []byte) []drawingPic {
	var pics []drawingPic

	decoder := xml.NewDecoder(strings.NewReader(string(drawingXML)))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok {
			switch se.Name.Local {
			case "twoCellAnchor", "oneCellAnchor":
				if pic, ok := parsePicAnchor(decoder); ok {
					pics = append(pics, pic)
				}
			}
		}
	}
	return pics
}

// parsePicAnchor consumes one anchor element, capturing the from cell and
// the first embedded blip.
func parsePicAnchor(decoder *xml.Decoder) (drawingPic, bool) {
	var pic drawingPic
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			switch t.Name.Local {
			case "from":
				row, col := parseFromCell(decoder)
				pic.row, pic.col = row, col
				depth--
			case "blip":
				if pic.embed == "" {
					for _, attr := range t.Attr {
						if attr.Name.Local == "embed" {
							pic.embed = attr.Value
						}
					}
				}
			}
		case xml.EndElement:
			depth--
		}
	}
	return pic, pic.embed != ""
}

// parseFromCell reads the row/col children of an xdr:from element and
// converts them to 1-based coordinates.
func parseFromCell(decoder *xml.Decoder) (row, col int) {
	depth := 1
	current := ""
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		switch t := token.(type) {
		case xml.StartElement:
			depth++
			current = t.Name.Local
		case xml.CharData:
			v, convErr := strconv.Atoi(strings.TrimSpace(string(t)))
			if convErr != nil {
				continue
			}
			switch current {
			case "row":
				row = v + 1
			case "col":
				col = v + 1
			}
		case xml.EndElement:
			depth--
			current = ""
		}
	}
	return row, col
}

// parseRelationships reads an OOXML .rels part into an Id -> Target map.
func parseRelationships(data []byte) map[string]string {
	rels := make(map[string]string)
	if len(data) == 0 {
		return rels
	}
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, attr := range se.Attr {
			switch attr.Name.Local {
			case "Id":
				id = attr.Value
			case "Target":
				target = attr.Value
			}
		}
		if id != "" && target != "" {
			rels[id] = target
		}
	}
	return rels
}

// relsPathFor returns the relationships part path for a given part.
func relsPathFor(partPath string) string {
	return path.Dir(partPath) + "/_rels/" + path.Base(partPath) + ".rels"
}

// resolveZipPath resolves a relationship target against the part that
// declared it. Absolute targets are container-rooted.
func resolveZipPath(basePath, target string) string {
	if target == "" {
		return ""
	}
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(path.Dir(basePath), target))
}

// readPart returns a named part's bytes, reporting whether it exists.
func (w *Workbook) readPart(name string) ([]byte, bool) {
	for _, f := range w.zr.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, false
			}
			defer rc.Close()
			data, err := io.ReadAll(rc)
			if err != nil {
				return nil, false
			}
			return data, true
		}
	}
	return nil, false
}

// partOrNil is readPart for optional parts.
func (w *Workbook) partOrNil(name string) []byte {
	data, _ := w.readPart(name)
	return data
}
