package deck

import (
	"fmt"
	"math"
	"strings"

	"github.com/deckgen/deckgen/markdown"
	"github.com/deckgen/deckgen/pptx"
)

// homePage clones the chapter-home template, titles it with the chapter
// heading, renders the chapter number into the nearest eligible shape
// above the title, and moves the slide to slideIndex.
func (g *Generator) homePage(pres *pptx.Presentation, chapter *markdown.Heading, templateIndex, chapterNumber, slideIndex int) error {
	slide, err := pres.DuplicateSlide(templateIndex)
	if err != nil {
		return fmt.Errorf("cloning chapter home slide: %w", err)
	}

	title := slide.Placeholder(pptx.PlaceholderTitle)
	if title == nil {
		return fmt.Errorf("%w: chapter home slide has no title placeholder", ErrTemplate)
	}
	if err := title.SetText(chapter.Text()); err != nil {
		return fmt.Errorf("setting chapter title: %w", err)
	}
	title.DisableWordWrap()

	if number := findChapterNumberShape(slide, title); number != nil {
		if err := number.SetText(g.chapterNumberText(chapterNumber)); err != nil {
			return fmt.Errorf("setting chapter number: %w", err)
		}
	}

	return pres.MoveSlide(pres.SlideIndex(slide), slideIndex)
}

// findChapterNumberShape scans the text shapes above the title for the
// one holding the chapter number. A shape whose text already looks like
// a chapter number ("01", "PART …", "1.") wins outright; otherwise the
// shape closest above the title is assumed to be it. Returns nil when
// nothing sits above the title.
func findChapterNumberShape(slide *pptx.Slide, title *pptx.Shape) *pptx.Shape {
	titleTop := title.Frame().Y
	minDistance := int64(math.MaxInt64)
	var closest *pptx.Shape
	for _, shape := range slide.Shapes() {
		if shape.Is(title) || !shape.HasTextFrame() {
			continue
		}
		top := shape.Frame().Y
		if top >= titleTop {
			continue
		}
		if distance := titleTop - top; distance < minDistance {
			if looksLikeChapterNumber(strings.TrimSpace(shape.Text())) {
				return shape
			}
			minDistance = distance
			closest = shape
		}
	}
	return closest
}

func looksLikeChapterNumber(text string) bool {
	if len(text) > 1 && text[0] == '0' && allASCIIDigits(text[1:]) {
		return true
	}
	if strings.HasPrefix(strings.ToLower(text), "part") {
		return true
	}
	if len(text) > 1 && strings.HasSuffix(text, ".") && allASCIIDigits(text[:len(text)-1]) {
		return true
	}
	return false
}

func allASCIIDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

// chapterNumberText renders a chapter number in the run's sticky style:
// "01", "PART 01", or "PART ONE". The style is chosen at the first call
// and reused for every later chapter so a deck stays uniform.
func (g *Generator) chapterNumberText(n int) string {
	if g.numberStyle == 0 {
		g.numberStyle = g.rng.Intn(3) + 1
	}
	switch g.numberStyle {
	case 1:
		return fmt.Sprintf("%02d", n)
	case 2:
		return fmt.Sprintf("PART %02d", n)
	default:
		return "PART " + strings.ToUpper(numberToWords(n))
	}
}

var onesWords = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
	"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}

var tensWords = map[int]string{20: "twenty", 30: "thirty", 40: "forty"}

// numberToWords spells a chapter number in English. Chapter counts are
// capped well below 50 by the catalog number limit, so the table stops
// there; anything out of range falls back to digits.
func numberToWords(n int) string {
	switch {
	case n >= 0 && n < len(onesWords):
		return onesWords[n]
	case n >= 20 && n < 50:
		tens := tensWords[n/10*10]
		if n%10 == 0 {
			return tens
		}
		return tens + "-" + onesWords[n%10]
	default:
		return fmt.Sprintf("%d", n)
	}
}
