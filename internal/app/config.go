package app

// Constants
const (
	APIVersion = "v1"

	// Error messages
	ErrInvalidDateFormat    = "Invalid date format (expected YYYY-MM-DD)"
	ErrInvalidWindow        = "End must not be before start"
	ErrMissingWindow        = "Query parameters start and end are required"
	ErrUnknownCategory      = "Unknown waste category"
	ErrInvalidFormat        = "Invalid format"
	ErrInvalidYear          = "Invalid year"
	ErrInternalServer       = "Internal server error"
	ErrFailedToGenerateJSON = "Failed to generate JSON"
	ErrFailedToGenerateICS  = "Failed to generate calendar"
	ErrRefreshFailed        = "Failed to refresh schedule"
	ErrUnauthorized         = "Unauthorized"

	// ICS constants
	ICSProductID = "-//AWB Bad Kreuznach//Abfallkalender//DE"
	ICSTimezone  = "Europe/Berlin"
	ICSUIDDomain = "awb-kalender"
	ICSTTL       = "PT1H"

	dateLayout = "2006-01-02"

	// subscribeAll selects every category in /api/subscribe/:category
	subscribeAll = "all"
)
