package assertions

// LabelExif is the label of the EXIF assertion.
const LabelExif = "stds.exif"

// exifContext maps the namespace prefixes used by ExifData keys.
var exifContext = map[string]string{
	"exif":   "http://ns.adobe.com/exif/1.0/",
	"exifEX": "http://cipa.jp/exif/2.32/",
	"tiff":   "http://ns.adobe.com/tiff/1.0/",
}

// ExifData holds the supported EXIF fields. Empty strings and nil pointers
// or slices are absent and never encoded.
type ExifData struct {
	GPSVersionID          string
	Latitude              string
	Longitude             string
	AltitudeRef           *uint8
	Altitude              string
	Timestamp             string
	SpeedRef              string
	Speed                 string
	DirectionRef          string
	Direction             string
	DestinationBearingRef string
	DestinationBearing    string
	PositioningError      string
	ExposureTime          string
	FNumber               *float64
	ColorSpace            *uint8
	DigitalZoomRatio      *float64
	Make                  string
	Model                 string
	LensMake              string
	LensModel             string
	LensSpecification     []float64
}

// Exif is the stds.exif assertion built from ExifData.
type Exif struct {
	values map[string]any
}

// NewExif maps every present field of data onto its namespaced key.
func NewExif(data ExifData) *Exif {
	v := map[string]any{}
	str := func(key, value string) {
		if value != "" {
			v[key] = value
		}
	}
	str("exif:GPSVersionID", data.GPSVersionID)
	str("exif:GPSLatitude", data.Latitude)
	str("exif:GPSLongitude", data.Longitude)
	if data.AltitudeRef != nil {
		v["exif:GPSAltitudeRef"] = *data.AltitudeRef
	}
	str("exif:GPSAltitude", data.Altitude)
	str("exif:GPSTimeStamp", data.Timestamp)
	str("exif:GPSSpeedRef", data.SpeedRef)
	str("exif:GPSSpeed", data.Speed)
	str("exif:GPSImgDirectionRef", data.DirectionRef)
	str("exif:GPSImgDirection", data.Direction)
	str("exif:GPSDestBearingRef", data.DestinationBearingRef)
	str("exif:GPSDestBearing", data.DestinationBearing)
	str("exif:GPSHPositioningError", data.PositioningError)
	str("exif:ExposureTime", data.ExposureTime)
	if data.FNumber != nil {
		v["exif:FNumber"] = *data.FNumber
	}
	if data.ColorSpace != nil {
		v["exif:ColorSpace"] = *data.ColorSpace
	}
	if data.DigitalZoomRatio != nil {
		v["exif:DigitalZoomRatio"] = *data.DigitalZoomRatio
	}
	str("tiff:Make", data.Make)
	str("tiff:Model", data.Model)
	str("exifEX:LensMake", data.LensMake)
	str("exifEX:LensModel", data.LensModel)
	if data.LensSpecification != nil {
		v["exifEX:LensSpecification"] = data.LensSpecification
	}
	return &Exif{values: v}
}

// Keys returns the number of EXIF keys, not counting @context.
func (e *Exif) Keys() int {
	return len(e.values)
}

func (*Exif) Label() string { return LabelExif }

func (e *Exif) Assertion() (*Assertion, error) {
	doc := make(map[string]any, len(e.values)+1)
	for k, v := range e.values {
		doc[k] = v
	}
	doc["@context"] = exifContext
	return EncodeJSON(LabelExif, doc)
}
