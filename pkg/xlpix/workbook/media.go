package workbook

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/ujiie/xlpix/pkg/xlpix/models"
)

// MediaImages enumerates every part under xl/media/ in natural-sort order
// (image2 before image10). The entries carry no cell anchor; callers pair
// them positionally with candidate rows when anchor extraction found
// nothing.
func (w *Workbook) MediaImages() ([]models.EmbeddedImage, error) {
	var names []string
	for _, f := range w.zr.File {
		if strings.HasPrefix(strings.ToLower(f.Name), "xl/media/") {
			names = append(names, f.Name)
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return naturalLess(names[i], names[j])
	})

	var images []models.EmbeddedImage
	for _, name := range names {
		data, ok := w.readPart(name)
		if !ok || len(data) == 0 {
			continue
		}
		images = append(images, models.EmbeddedImage{
			Ordinal: len(images) + 1,
			Format:  NormalizeFormat(path.Ext(name), data),
			Data:    data,
			Source:  name,
		})
	}
	return images, nil
}

// naturalLess compares strings treating digit runs as numbers, so
// "image2.png" sorts before "image10.png". Non-digit runs compare
// case-insensitively.
func naturalLess(a, b string) bool {
	ar, br := splitRuns(a), splitRuns(b)
	for i := 0; i < len(ar) && i < len(br); i++ {
		x, y := ar[i], br[i]
		xn, xErr := strconv.Atoi(x)
		yn, yErr := strconv.Atoi(y)
		switch {
		case xErr == nil && yErr == nil:
			if xn != yn {
				return xn < yn
			}
		default:
			xl, yl := strings.ToLower(x), strings.ToLower(y)
			if xl != yl {
				return xl < yl
			}
		}
	}
	return len(ar) < len(br)
}

// splitRuns splits a string into alternating digit and non-digit runs.
func splitRuns(s string) []string {
	var runs []string
	start := 0
	digits := false
	for i, r := range s {
		d := r >= '0' && r <= '9'
		if i == 0 {
			digits = d
			continue
		}
		if d != digits {
			runs = append(runs, s[start:i])
			start = i
			digits = d
		}
	}
	if start < len(s) {
		runs = append(runs, s[start:])
	}
	return runs
}
