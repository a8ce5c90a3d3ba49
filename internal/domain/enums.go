package domain

// PassengerType is the ticketing category of a passenger.
type PassengerType string

const (
	PassengerAdult  PassengerType = "ADT"
	PassengerChild  PassengerType = "CHD"
	PassengerInfant PassengerType = "INF"
)

// ValidPassengerTypes lists the accepted passenger type codes.
var ValidPassengerTypes = map[PassengerType]bool{
	PassengerAdult:  true,
	PassengerChild:  true,
	PassengerInfant: true,
}

// DocumentHint is the filename-derived guess of what a document contains.
// It only selects which extraction schema to request, never business logic.
type DocumentHint string

const (
	HintFlight  DocumentHint = "flight"
	HintHotel   DocumentHint = "hotel"
	HintUnknown DocumentHint = "unknown"
)

// BookingKind distinguishes the two booking record types on a trip.
type BookingKind string

const (
	BookingFlight BookingKind = "flight"
	BookingHotel  BookingKind = "hotel"
)

// FileType represents the allowed document types for ingestion.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeEML FileType = "eml"
	FileTypeTXT FileType = "txt"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeEML: "message/rfc822",
	FileTypeTXT: "text/plain",
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf": FileTypePDF,
	"eml": FileTypeEML,
	"txt": FileTypeTXT,
}
