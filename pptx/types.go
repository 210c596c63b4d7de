package pptx

// XML namespaces used in PPTX parts.
const (
	nsPresentationML = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsDrawingML      = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsRelationships  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels    = "http://schemas.openxmlformats.org/package/2006/relationships"
)

// Relationship types resolved through .rels parts.
const (
	relTypeSlide       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide"
	relTypeImage       = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relTypeNotesSlide  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide"
	relTypeSlideLayout = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout"
)

// Content types registered in [Content_Types].xml.
const (
	contentTypeSlide = "application/vnd.openxmlformats-officedocument.presentationml.slide+xml"
	contentTypeRels  = "application/vnd.openxmlformats-package.relationships+xml"
)

// Fixed part names.
const (
	partContentTypes = "[Content_Types].xml"
	partPresentation = "ppt/presentation.xml"
	partPresRels     = "ppt/_rels/presentation.xml.rels"
)

// Placeholder type tags carried on p:ph elements.
const (
	PlaceholderTitle       = "title"
	PlaceholderCenterTitle = "ctrTitle"
	PlaceholderSubtitle    = "subTitle"
	PlaceholderBody        = "body"
)

// imageContentTypes maps lowercase file extensions to the content type
// registered for embedded media.
var imageContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tif":  "image/tiff",
	"tiff": "image/tiff",
	"webp": "image/webp",
}
